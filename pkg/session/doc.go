/*
Package session implements gradient session management and persistence orchestration.

A session is a named, persisted synchronizer. The Manager keeps live synchronizers
in memory, serializes access to each one with a reference-counted lock (plus an
optional distributed lock across replicas), runs mutations through the interceptor
pipeline, writes every change through to a GradientStore, and fans channel
emissions out to remote observers as Notifications.
*/
package session

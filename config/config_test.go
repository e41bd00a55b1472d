/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package config

import "testing"

func TestValidateRequiresClasspath(t *testing.T) {
	c := Config{Threads: 1, JdkClassinfo: "digest.txt"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing classpath")
	}
}

func TestValidateRequiresOneDigestSource(t *testing.T) {
	c := Config{Classpath: "a.jar", Threads: 1}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when neither digest source is given")
	}
}

func TestValidateRejectsBothDigestSources(t *testing.T) {
	EmbeddedDigestsSupported = true
	defer func() { EmbeddedDigestsSupported = false }()
	c := Config{Classpath: "a.jar", Threads: 1, JdkClassinfo: "d.txt", JavaVersion: "21"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when both digest sources are given")
	}
}

func TestValidateRejectsJavaVersionWithoutEmbeddedSupport(t *testing.T) {
	EmbeddedDigestsSupported = false
	c := Config{Classpath: "a.jar", Threads: 1, JavaVersion: "21"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when binary lacks embedded digest support")
	}
}

func TestValidateAcceptsEmbeddedJavaVersion(t *testing.T) {
	EmbeddedDigestsSupported = true
	defer func() { EmbeddedDigestsSupported = false }()
	c := Config{Classpath: "a.jar", Threads: 1, JavaVersion: "21"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsUnsupportedJavaVersion(t *testing.T) {
	EmbeddedDigestsSupported = true
	defer func() { EmbeddedDigestsSupported = false }()
	c := Config{Classpath: "a.jar", Threads: 1, JavaVersion: "8"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unsupported java version")
	}
}

func TestValidateRejectsZeroThreads(t *testing.T) {
	c := Config{Classpath: "a.jar", Threads: 0, JdkClassinfo: "d.txt"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for zero threads")
	}
}

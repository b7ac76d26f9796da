/*
Package config loads graph parameters from YAML or JSON documents.

# Overview

A Config wraps the decoded document and resolves dotted keys into nested
sections. It is the file backend behind the settings package: every
configurable node parameter is looked up here once, at construction time.

	cfg, err := config.FromFile("graph.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	rate := cfg.Int("regions.producer.rate", 10)
	limit := cfg.Float("watch.limit", 0.5)
	period := cfg.Duration("clock.resolution", 10*time.Millisecond)

Given

	regions:
	  producer:
	    rate: 1
	watch:
	  limit: 0.75

rate is 1, limit is 0.75 and period falls back to 10ms.

# Defaults

Every accessor returns its default if the key is missing or the stored
value has the wrong type. Floats convert to int only without fraction.

# Thread Safety

Config is safe for concurrent reads. It is never modified after loading.
*/
package config

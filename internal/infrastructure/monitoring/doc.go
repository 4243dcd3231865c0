/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the tab
engine, tracking HTTP requests, tab lifecycle, dynamic compilation,
refinement rounds, surface size negotiation and collaborator calls.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record domain events
	metrics.TabOpened("tree", 3)
	metrics.CompileFailed("evaluate")

	// Time operations
	timer := monitoring.NewTimer(metrics, "refine")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring

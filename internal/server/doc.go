// Copyright (c) Elyx Authors.
// Licensed under the MIT License.

// Package server manages the lifecycle of the auxiliary HTTP server that
// exposes Prometheus metrics while a chat or simulation runs. Start is
// non-blocking; Shutdown drains within the configured timeout and is safe
// to call more than once.
package server

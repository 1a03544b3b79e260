// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for fetchdemo.
//
// Precedence is ENV > YAML file > defaults. A .env file in the working
// directory is read before the environment is consulted; variables already
// set in the process environment win over it.
package config

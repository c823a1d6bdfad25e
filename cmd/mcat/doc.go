// Package main hosts the mcat CLI entrypoint and command graph.
//
// The root command converts one or more Dolby E-AC3/TrueHD bitstreams into
// per-channel mono WAV files, optionally merging them into one multi-channel
// WAV and re-encoding that to FLAC. Subcommands list the channel layout
// catalog, check the external toolchain, inspect WAV outputs and scaffold the
// configuration file.
//
// Keep this package lean: conversion logic lives in internal/pipeline and the
// packages it drives; commands here resolve flags against the config and
// render results.
package main

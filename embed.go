package siteforge

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// editor.js (field wiring + preview bridge) and editor.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

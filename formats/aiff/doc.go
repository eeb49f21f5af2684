// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes PCM AIFF files with github.com/go-audio/aiff.
package aiff

// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 layer III streams with
// github.com/hajimehoshi/go-mp3. Output is always stereo.
package mp3

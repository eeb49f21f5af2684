// SPDX-License-Identifier: EPL-2.0

// Package simplefile saves and restores audios as an XML project file.
//
// A file holds, per audio, its presets and flags, the effect chains built
// by the fx factory together with their port values, the patterns of its
// channels, and its notation and automation. Sample data is not part of
// the file; templates are loaded from their own resources.
//
//	f, err := simplefile.ReadFile("song.xml")
//	if err != nil {
//		return err
//	}
//
//	audios, err := f.Load(e, fx.NewFactory(e))
package simplefile

// SPDX-License-Identifier: EPL-2.0

// Package audio decodes sample files into resources the engine can read.
//
// # Sources
//
// A Source is a decoded PCM stream of interleaved float64 samples in
// [-1, 1]. The formats packages provide Decoders for WAV, AIFF, MP3 and Ogg
// Vorbis; a Registry looks them up by format key or file extension:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	dec, err := reg.ForPath("kick.wav")
//
// Sources chain. The Resampler changes the sample rate with cubic
// interpolation and the MonoMixer averages channels:
//
//	mono := audio.NewMonoMixer(audio.NewResampler(src, 44100))
//
// # Resources
//
// A Resource is random access storage addressed per audio channel and
// frame, with POSIX style Seek. Open decodes a whole stream into a
// MemoryResource converted to the given presets:
//
//	res, err := audio.Open(dec, f, stream.Presets{Samplerate: 44100})
//	buf := stream.NewBuffer(stream.FormatDouble, 512)
//	n, err := res.Read(buf, 0, 512)
//
// Create returns a writable resource that is encoded as WAV when flushed.
//
// A read may return samples together with io.EOF:
//
//	for {
//		n, err := src.ReadSamples(buf)
//		// use buf[:n]
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			return err
//		}
//	}
package audio

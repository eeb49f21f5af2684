// SPDX-License-Identifier: EPL-2.0

/*
Package engine implements the audio graph and the recall execution model.

An Audio owns a grid of input and output Channels, pads by audio channels.
Every Channel owns a Recycling holding the AudioSignals alive for it: the
template signal of the pad, one master signal per run on outputs and one
sub-run signal per playing note on inputs.

Effects are Recalls. The factory in package fx attaches templates to an
Audio and its Channels; Engine.Start duplicates the run-level templates
for a new RecallID, resolves their dependencies and initializes them.
Every RunBlock then drives the pre, inter and post stages in a fixed
order: audio-level recalls in chain order, input channels by ascending
line, output channels by ascending line. A recall runs its children after
itself.

Recall lifecycle:

	template -> pending -> resolved -> running -> done -> freed

Done is the only way to cancel a recall. It is idempotent and takes effect
at the start of the next stage. Done recalls are swept at the end of the
block; their disposal runs on the control side through Engine.Poll.

Every exported getter returning a collection returns a copy, so callers
iterate without holding the owner's lock. Object locks are never held
while taking a device buffer lock.
*/
package engine

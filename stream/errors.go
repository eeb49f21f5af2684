// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	ErrUnknownFormat = errors.New("unknown sample format")
	ErrInvalidSize   = errors.New("buffer size must be positive")
)

// SPDX-License-Identifier: EPL-2.0

package midi

import "errors"

var (
	ErrTruncatedVarLen = errors.New("truncated variable-length quantity")
	ErrNothingRecorded = errors.New("no events recorded")
)

// SPDX-License-Identifier: EPL-2.0

package port

import "errors"

var ErrInvalidControlPort = errors.New("control port must look like index/total")

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import "golang.org/x/sys/unix"

func excludeFromCoreDump(data []byte) error {
	return unix.Madvise(data, unix.MADV_DONTDUMP)
}

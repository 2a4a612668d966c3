// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package manifest

func acquireLock(string) (func(), error) {
	return nil, errLockUnsupported
}

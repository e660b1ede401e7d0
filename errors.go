// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package nifile

import (
	"errors"

	"github.com/kelindar/ni-file/internal/nierr"
)

// Sentinel errors surfaced at the public API boundary, re-exported from
// internal/nierr so callers can errors.Is against them without reaching
// into an internal package.
var (
	ErrIO                 = nierr.ErrIO
	ErrBadMagic           = nierr.ErrBadMagic
	ErrUnsupportedVersion = nierr.ErrUnsupportedVersion
	ErrDecompression      = nierr.ErrDecompression
	ErrUnknownItemID      = nierr.ErrUnknownItemID
	ErrUnknownChunkID     = nierr.ErrUnknownChunkID
)

// ErrNotImplemented is returned by Decode for file types that are
// detected but whose decoder is out of this library's core scope
// (KoreSound, KontaktLegacyV2).
var ErrNotImplemented = errors.New("nifile: decoder not implemented for this file type")

// IncorrectFrameSize reports a length-prefixed field whose declared
// length disagrees with the bytes actually available in the enclosing
// region.
type IncorrectFrameSize = nierr.IncorrectFrameSize

// Copyright 2021 by Thong Nguyen. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package velocypack is a single-pass JSON-to-VPack transcoder.  It
// parses one or more JSON texts from a contiguous byte buffer and emits
// a compact, self-describing binary value form into one flat output
// buffer, with no per-token allocations beyond buffer growth.  Only
// UTF-8 input is supported.
//
// # Format
//
// Every VPack value starts with a one-byte tag.  Strings up to 127
// bytes encode their length in the tag (0x40 + len); longer strings use
// tag 0x0c followed by an 8-byte little-endian length.  Arrays and
// objects carry a byte length (and, unless all array children have the
// same size, an item count and a trailing index table of child offsets)
// in fields of 1, 2, 4 or 8 bytes, chosen when the container is closed.
// Object index tables are sorted by key unless disabled, which makes
// key lookup a binary search.
//
// The Parser drives a Builder, which can also be used directly to
// construct VPack programmatically.  Slice navigates emitted bytes and
// DumpJSON renders them back to JSON.
//
// # Testing
//
// The package is tested with byte-exact encoding tables, property
// checks for container-header width selection, and a go-fuzz harness
// (testdata/fuzzing) that differentially compares parse results with
// encoding/json and checks that parse-dump-parse reaches a fixed point.
package velocypack

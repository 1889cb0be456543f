// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"

	"github.com/tomcat1102/StackDB/internal/coding"
)

// ValueKind tags an internal key as either a live value or a tombstone.
type ValueKind uint8

const (
	// ValueKindDeletion marks a tombstone: the key has been deleted.
	ValueKindDeletion ValueKind = 0
	// ValueKindValue marks a live value.
	ValueKindValue ValueKind = 1
	// ValueKindSeek is used only when constructing search keys: it is
	// numerically equal to ValueKindValue, the largest kind, so that the
	// packed seq/type of a search key at a given sequence number sorts no
	// later than any real entry at the same user key and sequence number.
	ValueKindSeek ValueKind = ValueKindValue
)

// SeqNum is a 56-bit monotonically increasing write identifier.
type SeqNum uint64

// MaxSeqNum is the largest representable sequence number: 2^56 - 1. The low
// 8 bits of the packed seq/type word are reserved for the ValueKind.
const MaxSeqNum SeqNum = (1 << 56) - 1

// InternalKeySize is the number of bytes an internal key's encoded trailer
// occupies beyond the user key: an 8-byte little-endian packed seq/type.
const InternalKeySize = 8

// packSeqAndKind packs seq (56 bits) and kind (8 bits) into a single
// uint64, high bits first: (seq << 8) | kind.
func packSeqAndKind(seq SeqNum, kind ValueKind) uint64 {
	return (uint64(seq) << 8) | uint64(kind)
}

func unpackSeqAndKind(packed uint64) (SeqNum, ValueKind) {
	return SeqNum(packed >> 8), ValueKind(packed & 0xff)
}

// ParsedInternalKey is the decoded (user_key, seq, kind) triple encoded by
// an internal key.
type ParsedInternalKey struct {
	UserKey []byte
	SeqNum  SeqNum
	Kind    ValueKind
}

// Size returns the length of this key's internal-key encoding.
func (k ParsedInternalKey) Size() int {
	return len(k.UserKey) + InternalKeySize
}

// AppendInternalKey appends the internal-key encoding of k to dst and
// returns the extended slice.
func AppendInternalKey(dst []byte, k ParsedInternalKey) []byte {
	dst = append(dst, k.UserKey...)
	return coding.PutFixed64(dst, packSeqAndKind(k.SeqNum, k.Kind))
}

// ParseInternalKey decodes an internal key. ok is false if internalKey is
// too short to hold a valid trailer, or the trailer's kind byte is not a
// defined ValueKind.
func ParseInternalKey(internalKey []byte) (key ParsedInternalKey, ok bool) {
	n := len(internalKey)
	if n < InternalKeySize {
		return ParsedInternalKey{}, false
	}
	packed := coding.DecodeFixed64(internalKey[n-InternalKeySize:])
	seq, kind := unpackSeqAndKind(packed)
	if kind > ValueKindSeek {
		return ParsedInternalKey{}, false
	}
	return ParsedInternalKey{
		UserKey: internalKey[:n-InternalKeySize],
		SeqNum:  seq,
		Kind:    kind,
	}, true
}

// ExtractUserKey returns the user-key prefix of an encoded internal key.
func ExtractUserKey(internalKey []byte) []byte {
	return internalKey[:len(internalKey)-InternalKeySize]
}

func (k ParsedInternalKey) String() string {
	return fmt.Sprintf("%q @ %d : %d", k.UserKey, k.SeqNum, k.Kind)
}

// InternalKey is an encoded ParsedInternalKey.
type InternalKey []byte

// MakeInternalKey encodes (userKey, seq, kind) as an InternalKey.
func MakeInternalKey(userKey []byte, seq SeqNum, kind ValueKind) InternalKey {
	return AppendInternalKey(nil, ParsedInternalKey{UserKey: userKey, SeqNum: seq, Kind: kind})
}

// UserKey returns the user-key prefix of k.
func (k InternalKey) UserKey() []byte { return ExtractUserKey(k) }

// Parse decodes k.
func (k InternalKey) Parse() (ParsedInternalKey, bool) { return ParseInternalKey(k) }

// InternalKeyComparerName is the stable name of InternalCompare's comparer,
// consulted by higher layers to refuse opening a database created with a
// different comparator.
const InternalKeyComparerName = "stackdb.InternalKeyComparator"

// InternalKeyComparer orders internal keys: ascending by user key under the
// supplied user comparator, and on a tie, descending by packed seq/kind (so
// the newest write for a user key sorts first). This ordering is a hard
// contract the memtable lookup relies on.
type InternalKeyComparer struct {
	UserCompare Compare
}

// Compare implements the internal-key ordering.
func (c InternalKeyComparer) Compare(a, b []byte) int {
	if res := c.UserCompare(ExtractUserKey(a), ExtractUserKey(b)); res != 0 {
		return res
	}
	aSeqKind := coding.DecodeFixed64(a[len(a)-InternalKeySize:])
	bSeqKind := coding.DecodeFixed64(b[len(b)-InternalKeySize:])
	switch {
	case aSeqKind > bSeqKind:
		return -1
	case aSeqKind < bSeqKind:
		return 1
	default:
		return 0
	}
}

// AppendSeparator appends to dst a shortened internal key that still sorts
// strictly between start and limit, when the user-key portion admits a
// shorter separator; otherwise it appends start unchanged.
func (c InternalKeyComparer) AppendSeparator(dst, start, limit []byte, userCmp *Comparer) []byte {
	userStart := ExtractUserKey(start)
	userLimit := ExtractUserKey(limit)

	tmp := userCmp.Separator(nil, userStart, userLimit)
	if len(tmp) < len(userStart) && userCmp.Compare(userStart, tmp) < 0 {
		tmp = coding.PutFixed64(tmp, packSeqAndKind(MaxSeqNum, ValueKindSeek))
		return append(dst, tmp...)
	}
	return append(dst, start...)
}

// AppendSuccessor is the one-sided analogue of AppendSeparator.
func (c InternalKeyComparer) AppendSuccessor(dst, key []byte, userCmp *Comparer) []byte {
	userKey := ExtractUserKey(key)

	tmp := userCmp.Successor(nil, userKey)
	if len(tmp) < len(userKey) && userCmp.Compare(userKey, tmp) < 0 {
		tmp = coding.PutFixed64(tmp, packSeqAndKind(MaxSeqNum, ValueKindSeek))
		return append(dst, tmp...)
	}
	return append(dst, key...)
}

// LookupKey is a memtable-key-shaped buffer built for a given user key and
// snapshot sequence number, used to seek a skiplist keyed by memtable
// entries. Its MemtableKey is varint32(len(user_key)+8) followed by the
// user key and the packed seq/kind trailer; the suffix starting at UserKey
// is itself a valid InternalKey (with kind ValueKindSeek).
type LookupKey struct {
	// buf holds varint32(klen) || user_key || packed(seq, Seek). keyStart is
	// the offset of user_key within buf.
	buf      [200]byte
	rep      []byte
	keyStart int
}

// MakeLookupKey builds a LookupKey for userKey at snapshot seq.
func MakeLookupKey(userKey []byte, seq SeqNum) LookupKey {
	var lk LookupKey
	internalKeyLen := len(userKey) + InternalKeySize

	var dst []byte
	needed := coding.LenUvarint32(uint32(internalKeyLen)) + internalKeyLen
	if needed <= len(lk.buf) {
		dst = lk.buf[:0]
	} else {
		dst = make([]byte, 0, needed)
	}

	dst = coding.PutUvarint32(dst, uint32(internalKeyLen))
	lk.keyStart = len(dst)
	dst = append(dst, userKey...)
	dst = coding.PutFixed64(dst, packSeqAndKind(seq, ValueKindSeek))
	lk.rep = dst
	return lk
}

// MemtableKey returns the full varint32(len) || internal_key encoding,
// suitable for seeking a skiplist keyed by memtable entries.
func (k *LookupKey) MemtableKey() []byte { return k.rep }

// InternalKey returns the user_key || packed(seq,kind) suffix, itself a
// valid InternalKey.
func (k *LookupKey) InternalKey() InternalKey { return InternalKey(k.rep[k.keyStart:]) }

// UserKey returns just the user-key portion.
func (k *LookupKey) UserKey() []byte { return k.rep[k.keyStart : len(k.rep)-InternalKeySize] }

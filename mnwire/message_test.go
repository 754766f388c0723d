// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnwire

import (
	"bytes"
	"net"
	"reflect"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
)

// testOutPoint returns a deterministic outpoint for tests.
func testOutPoint(b byte, index uint32) wire.OutPoint {
	var hash chainhash.Hash
	for i := range hash {
		hash[i] = b
	}
	return wire.OutPoint{Hash: hash, Index: index}
}

// testPing returns a fully populated ping message.
func testPing() *MsgMNPing {
	var blockHash chainhash.Hash
	blockHash[0] = 0xab
	msg := NewMsgMNPing(testOutPoint(0x11, 1), blockHash, 1700000000)
	msg.Sig = bytes.Repeat([]byte{0x42}, 65)
	return msg
}

// testBroadcast returns a fully populated announcement message.
func testBroadcast() *MsgMNBroadcast {
	addr := NewServiceAddress(net.ParseIP("203.0.113.5"), 9947)
	msg := NewMsgMNBroadcast(testOutPoint(0x11, 1), addr,
		bytes.Repeat([]byte{0x02}, 33), bytes.Repeat([]byte{0x03}, 33),
		1700000000, 70919)
	msg.Sig = bytes.Repeat([]byte{0x41}, 65)
	msg.LastPing = *testPing()
	return msg
}

// TestMessageRoundTrip tests that each overlay message survives an encode
// followed by a decode unchanged.
func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   wire.Message
		out  wire.Message
	}{
		{"mnp", testPing(), &MsgMNPing{}},
		{"mnb", testBroadcast(), &MsgMNBroadcast{}},
		{"dseg full", NewMsgDSeg(ZeroOutPoint), &MsgDSeg{}},
		{"dseg single", NewMsgDSeg(testOutPoint(0x22, 7)), &MsgDSeg{}},
		{
			"spork",
			&MsgSpork{
				SporkID:    10007,
				Value:      4070908800,
				TimeSigned: 1700000000,
				Sig:        bytes.Repeat([]byte{0x40}, 65),
			},
			&MsgSpork{},
		},
		{"getsporks", NewMsgGetSporks(), &MsgGetSporks{}},
		{
			"ssc",
			NewMsgSyncStatusCount(SyncItemList, 42),
			&MsgSyncStatusCount{},
		},
	}

	pver := uint32(70919)
	for _, test := range tests {
		var buf bytes.Buffer
		err := test.in.BtcEncode(&buf, pver, wire.BaseEncoding)
		if err != nil {
			t.Errorf("%s: BtcEncode error %v", test.name, err)
			continue
		}
		if uint32(buf.Len()) > test.in.MaxPayloadLength(pver) {
			t.Errorf("%s: payload %d exceeds max %d", test.name,
				buf.Len(), test.in.MaxPayloadLength(pver))
			continue
		}

		rbuf := bytes.NewReader(buf.Bytes())
		err = test.out.BtcDecode(rbuf, pver, wire.BaseEncoding)
		if err != nil {
			t.Errorf("%s: BtcDecode error %v", test.name, err)
			continue
		}
		if !reflect.DeepEqual(test.in, test.out) {
			t.Errorf("%s: decoded message mismatch:\n%s\n%s",
				test.name, spew.Sdump(test.in),
				spew.Sdump(test.out))
		}
	}
}

// TestPingHash tests that the ping hash covers the identity fields and
// excludes the signature.
func TestPingHash(t *testing.T) {
	a := testPing()
	b := testPing()
	b.Sig = bytes.Repeat([]byte{0x66}, 65)
	if a.Hash() != b.Hash() {
		t.Fatal("ping hash changed with signature")
	}

	c := testPing()
	c.SigTime++
	if a.Hash() == c.Hash() {
		t.Fatal("ping hash did not change with sig time")
	}
}

// TestBroadcastHash tests that the announcement hash covers the outpoint,
// the collateral key, and the signing time only.
func TestBroadcastHash(t *testing.T) {
	a := testBroadcast()
	b := testBroadcast()
	b.Sig = bytes.Repeat([]byte{0x66}, 65)
	b.Addr = NewServiceAddress(net.ParseIP("198.51.100.9"), 9947)
	if a.Hash() != b.Hash() {
		t.Fatal("broadcast hash changed with non-identity fields")
	}

	c := testBroadcast()
	c.PubKeyCollateral = bytes.Repeat([]byte{0x05}, 33)
	if a.Hash() == c.Hash() {
		t.Fatal("broadcast hash did not change with collateral key")
	}
}

// TestDSegWantsFullList tests the zero outpoint convention for list
// requests.
func TestDSegWantsFullList(t *testing.T) {
	if !NewMsgDSeg(ZeroOutPoint).WantsFullList() {
		t.Fatal("zero outpoint should request the full list")
	}
	if NewMsgDSeg(testOutPoint(0x33, 0)).WantsFullList() {
		t.Fatal("non-zero outpoint should request a single entry")
	}
}

// TestMessageCommands tests the protocol command strings.
func TestMessageCommands(t *testing.T) {
	tests := []struct {
		msg  wire.Message
		want string
	}{
		{&MsgMNPing{}, "mnp"},
		{&MsgMNBroadcast{}, "mnb"},
		{&MsgDSeg{}, "dseg"},
		{&MsgSpork{}, "spork"},
		{&MsgGetSporks{}, "getsporks"},
		{&MsgSyncStatusCount{}, "ssc"},
	}
	for _, test := range tests {
		if cmd := test.msg.Command(); cmd != test.want {
			t.Errorf("wrong command %q, want %q", cmd, test.want)
		}
	}
}

// TestServiceAddressClass tests network classification of service
// addresses.
func TestServiceAddressClass(t *testing.T) {
	tests := []struct {
		host string
		want NetworkClass
	}{
		{"203.0.113.5", NetworkIPv4},
		{"10.1.2.3", NetworkUnroutable},
		{"192.168.0.1", NetworkUnroutable},
		{"127.0.0.1", NetworkUnroutable},
		{"2001:db8::1", NetworkIPv6},
		{"fd87:d87e:eb43::1", NetworkOnion},
		{"::1", NetworkUnroutable},
	}
	for _, test := range tests {
		sa := NewServiceAddress(net.ParseIP(test.host), 9947)
		if got := sa.Class(); got != test.want {
			t.Errorf("%s: got class %v, want %v", test.host, got,
				test.want)
		}
	}
}

// TestServiceAddressRoundTrip tests address serialization for both IPv4
// and IPv6 addresses.
func TestServiceAddressRoundTrip(t *testing.T) {
	addrs := []ServiceAddress{
		NewServiceAddress(net.ParseIP("203.0.113.5"), 9947),
		NewServiceAddress(net.ParseIP("2001:db8::1"), 19947),
	}
	for _, in := range addrs {
		var buf bytes.Buffer
		if err := writeServiceAddress(&buf, &in); err != nil {
			t.Fatalf("writeServiceAddress: %v", err)
		}
		var out ServiceAddress
		if err := readServiceAddress(&buf, &out); err != nil {
			t.Fatalf("readServiceAddress: %v", err)
		}
		if !out.IP.Equal(in.IP) || out.Port != in.Port {
			t.Errorf("address mismatch: got %s, want %s",
				out.String(), in.String())
		}
	}
}

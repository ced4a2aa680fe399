// Package simtests holds shared scenario vectors.  The interpreter and
// compiled backends run the same vectors and must agree on every one; the
// vectors are also the raw material for the differential tests.
package simtests

import "github.com/rw1nkler/xls/ir"

// ProcVec is one proc simulation scenario: an IR package, a tick schedule,
// per-channel input streams, and the exact output streams every backend
// must produce.
type ProcVec struct {
	Name     string
	IR       string
	Schedule string
	Inputs   map[string][]ir.Value
	Want     map[string][]ir.Value
}

// B builds a bits-valued stream of the given width.
func B(width int, xs ...uint64) []ir.Value {
	out := make([]ir.Value, len(xs))
	for i, x := range xs {
		out[i] = ir.NewBits(width, x)
	}
	return out
}

// AccumIR is a two-input accumulator: each tick it receives one value from
// each input channel, adds them to the running state (initially 10), emits
// the sum on out_ch and a constant 55 on out_ch_2, and carries
// 10 + old state forward.
const AccumIR = `package accum

chan in_ch(bits[64], id=1, kind=streaming, ops=receive_only, flow_control=ready_valid, metadata="""""")
chan in_ch_2(bits[64], id=2, kind=streaming, ops=receive_only, flow_control=ready_valid, metadata="""""")
chan out_ch(bits[64], id=3, kind=streaming, ops=send_only, flow_control=ready_valid, metadata="""""")
chan out_ch_2(bits[64], id=4, kind=streaming, ops=send_only, flow_control=ready_valid, metadata="""""")

proc test_proc(tkn: token, st: (bits[64]), init=(10)) {
  receive.1: (token, bits[64]) = receive(tkn, channel_id=1, id=1)
  literal.3: bits[1] = literal(value=1, id=3)
  tuple_index.4: bits[64] = tuple_index(receive.1, index=1, id=4)
  tuple_index.7: token = tuple_index(receive.1, index=0, id=7)
  receive.9: (token, bits[64]) = receive(tuple_index.7, channel_id=2, id=9)
  tuple_index.10: bits[64] = tuple_index(receive.9, index=1, id=10)
  tuple_index.11: token = tuple_index(receive.9, index=0, id=11)
  add.8: bits[64] = add(tuple_index.4, tuple_index.10, id=8)
  tuple_index.23: bits[64] = tuple_index(st, index=0, id=23)
  add.24: bits[64] = add(add.8, tuple_index.23, id=24)
  send.2: token = send(tuple_index.11, add.24, predicate=literal.3, channel_id=3, id=2)
  literal.14: bits[64] = literal(value=55, id=14)
  send.12: token = send(send.2, literal.14, predicate=literal.3, channel_id=4, id=12)
  literal.21: bits[64] = literal(value=10, id=21)
  add.20: bits[64] = add(literal.21, tuple_index.23, id=20)
  tuple.22: (bits[64]) = tuple(add.20, id=22)
  next(send.12, tuple.22)
}
`

// TokenOrderIR sends two constants on one channel each tick, ordered only
// by the token chain between the sends.
const TokenOrderIR = `package tokord

chan out(bits[8], id=1, kind=streaming, ops=send_only, flow_control=ready_valid, metadata="""""")

proc p(tkn: token, st: (bits[8]), init=(0)) {
  literal.1: bits[8] = literal(value=7, id=1)
  literal.2: bits[8] = literal(value=9, id=2)
  send.3: token = send(tkn, literal.1, channel_id=1, id=3)
  send.4: token = send(send.3, literal.2, channel_id=1, id=4)
  next(send.4, st)
}
`

// PipelineIR is a two-proc pipeline over an in-package channel.  The
// consumer is declared first, so each tick it stalls until the producer's
// send lands and is completed on a later scheduler pass of the same tick.
const PipelineIR = `package pipeline

chan in(bits[32], id=1, kind=streaming, ops=receive_only, flow_control=ready_valid, metadata="""""")
chan mid(bits[32], id=2, kind=streaming, ops=send_receive, flow_control=ready_valid, metadata="""""")
chan out(bits[32], id=3, kind=streaming, ops=send_only, flow_control=ready_valid, metadata="""""")

proc stage2(t2: token, s2: (bits[32]), init=(0)) {
  receive.10: (token, bits[32]) = receive(t2, channel_id=2, id=10)
  tuple_index.11: token = tuple_index(receive.10, index=0, id=11)
  tuple_index.12: bits[32] = tuple_index(receive.10, index=1, id=12)
  literal.13: bits[32] = literal(value=2, id=13)
  umul.14: bits[32] = umul(tuple_index.12, literal.13, id=14)
  send.15: token = send(tuple_index.11, umul.14, channel_id=3, id=15)
  next(send.15, s2)
}

proc stage1(t1: token, s1: (bits[32]), init=(0)) {
  receive.20: (token, bits[32]) = receive(t1, channel_id=1, id=20)
  tuple_index.21: token = tuple_index(receive.20, index=0, id=21)
  tuple_index.22: bits[32] = tuple_index(receive.20, index=1, id=22)
  literal.23: bits[32] = literal(value=1, id=23)
  add.24: bits[32] = add(tuple_index.22, literal.23, id=24)
  send.25: token = send(tuple_index.21, add.24, channel_id=2, id=25)
  next(send.25, s1)
}
`

// AfterAllIR sends on two channels from independent token chains and joins
// the chains with after_all before next.
const AfterAllIR = `package join

chan out_a(bits[8], id=1, kind=streaming, ops=send_only, flow_control=ready_valid, metadata="""""")
chan out_b(bits[8], id=2, kind=streaming, ops=send_only, flow_control=ready_valid, metadata="""""")

proc p(tkn: token, st: (bits[8]), init=(0)) {
  literal.1: bits[8] = literal(value=1, id=1)
  literal.2: bits[8] = literal(value=2, id=2)
  send.3: token = send(tkn, literal.1, channel_id=1, id=3)
  send.4: token = send(tkn, literal.2, channel_id=2, id=4)
  after_all.5: token = after_all(send.3, send.4, id=5)
  next(after_all.5, st)
}
`

// SingleValueIR drives both sides of single_value channels: reads from reg
// leave the slot in place, and the second of two token-chained sends to
// latest overwrites the first within the same tick.
const SingleValueIR = `package regs

chan reg(bits[8], id=1, kind=single_value, ops=receive_only, flow_control=none, metadata="""""")
chan latest(bits[8], id=2, kind=single_value, ops=send_only, flow_control=none, metadata="""""")

proc p(tkn: token, st: (bits[8]), init=(0)) {
  receive.1: (token, bits[8]) = receive(tkn, channel_id=1, id=1)
  tuple_index.2: token = tuple_index(receive.1, index=0, id=2)
  tuple_index.3: bits[8] = tuple_index(receive.1, index=1, id=3)
  literal.4: bits[8] = literal(value=1, id=4)
  add.5: bits[8] = add(tuple_index.3, literal.4, id=5)
  send.6: token = send(tuple_index.2, tuple_index.3, channel_id=2, id=6)
  send.7: token = send(send.6, add.5, channel_id=2, id=7)
  next(send.7, st)
}
`

// PredSendIR forwards only even inputs: the send's predicate tests the low
// bit of the received value.
const PredSendIR = `package predsend

chan in(bits[8], id=1, kind=streaming, ops=receive_only, flow_control=ready_valid, metadata="""""")
chan evens(bits[8], id=2, kind=streaming, ops=send_only, flow_control=ready_valid, metadata="""""")

proc p(tkn: token, st: (bits[8]), init=(0)) {
  receive.1: (token, bits[8]) = receive(tkn, channel_id=1, id=1)
  tuple_index.2: token = tuple_index(receive.1, index=0, id=2)
  tuple_index.3: bits[8] = tuple_index(receive.1, index=1, id=3)
  literal.4: bits[8] = literal(value=1, id=4)
  and.5: bits[8] = and(tuple_index.3, literal.4, id=5)
  literal.6: bits[8] = literal(value=0, id=6)
  eq.7: bits[1] = eq(and.5, literal.6, id=7)
  send.8: token = send(tuple_index.2, tuple_index.3, predicate=eq.7, channel_id=2, id=8)
  next(send.8, st)
}
`

// ProcVecs returns the shared simulation scenarios.
func ProcVecs() []ProcVec {
	return []ProcVec{
		{
			Name:     "accum 1 segment",
			IR:       AccumIR,
			Schedule: "2",
			Inputs: map[string][]ir.Value{
				"in_ch":   B(64, 42, 101),
				"in_ch_2": B(64, 10, 6),
			},
			Want: map[string][]ir.Value{
				"out_ch":   B(64, 62, 127),
				"out_ch_2": B(64, 55, 55),
			},
		},
		{
			Name:     "accum 2 segments resets state",
			IR:       AccumIR,
			Schedule: "1,1",
			Inputs: map[string][]ir.Value{
				"in_ch":   B(64, 42, 101),
				"in_ch_2": B(64, 10, 6),
			},
			Want: map[string][]ir.Value{
				"out_ch":   B(64, 62, 117),
				"out_ch_2": B(64, 55, 55),
			},
		},
		{
			Name:     "token chain orders same-channel sends",
			IR:       TokenOrderIR,
			Schedule: "2",
			Want: map[string][]ir.Value{
				"out": B(8, 7, 9, 7, 9),
			},
		},
		{
			Name:     "pipeline retries stalled consumer within a tick",
			IR:       PipelineIR,
			Schedule: "2",
			Inputs: map[string][]ir.Value{
				"in": B(32, 3, 5),
			},
			Want: map[string][]ir.Value{
				"out": B(32, 8, 12),
				"mid": nil,
			},
		},
		{
			Name:     "false predicate skips the send",
			IR:       PredSendIR,
			Schedule: "4",
			Inputs: map[string][]ir.Value{
				"in": B(8, 1, 2, 3, 4),
			},
			Want: map[string][]ir.Value{
				"evens": B(8, 2, 4),
			},
		},
		{
			Name:     "after_all joins independent token chains",
			IR:       AfterAllIR,
			Schedule: "2",
			Want: map[string][]ir.Value{
				"out_a": B(8, 1, 1),
				"out_b": B(8, 2, 2),
			},
		},
		{
			// The reg slot survives every tick's read, and of the two
			// sends to latest only the later one remains.
			Name:     "single_value reads persist and sends overwrite",
			IR:       SingleValueIR,
			Schedule: "2",
			Inputs: map[string][]ir.Value{
				"reg": B(8, 5),
			},
			Want: map[string][]ir.Value{
				"latest": B(8, 6),
			},
		},
	}
}

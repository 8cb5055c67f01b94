package pio

import "testing"

// TestJMPAlwaysLoops builds a one-instruction infinite loop and checks PC
// never advances past it.
func TestJMPAlwaysLoops(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpJMP, Cond: CondAlways, Addr: 0},
	}, 0, 0)
	for i := 0; i < 5; i++ {
		if !e.Step() {
			t.Fatalf("step %d: unexpected stall", i)
		}
		if e.PC != 0 {
			t.Fatalf("step %d: PC = %d, want 0", i, e.PC)
		}
	}
}

// TestXDecCountsDown exercises the X-- loop idiom: jump back to 0 while X
// is nonzero, decrementing on every test. Starting from 3 the jump is
// taken three times; the fourth test sees X == 0, falls through, and the
// decrement wraps X to 0xFFFFFFFF.
func TestXDecCountsDown(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpJMP, Cond: CondXDec, Addr: 0},
		{Op: OpJMP, Cond: CondAlways, Addr: 1}, // parked here once the loop exits
	}, 0, 1)
	e.X = 3

	for i := 0; i < 4; i++ {
		e.Step()
	}
	if e.X != 0xFFFFFFFF {
		t.Fatalf("X = %d, want 0xFFFFFFFF after three taken jumps and the final test", e.X)
	}
	if e.PC != 1 {
		t.Fatalf("PC = %d, want 1 (loop exited)", e.PC)
	}
}

func TestWaitBlocksUntilPinSet(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpWAIT, Source: OperandPins, WaitIndex: 0, WaitPolarity: true},
		{Op: OpJMP, Cond: CondAlways, Addr: 1},
	}, 0, 1)

	for i := 0; i < 3; i++ {
		if e.Step() != true {
			t.Fatalf("WAIT step should not itself fail, only hold PC")
		}
		if e.PC != 0 {
			t.Fatalf("PC advanced past WAIT while pin low")
		}
	}

	e.Pins = 1
	e.Step()
	if e.PC != 1 {
		t.Fatalf("PC = %d, want 1 once WAIT condition satisfied", e.PC)
	}
}

func TestINShiftsPinsIntoISRLeftFirst(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpIN, Source: OperandPins, Bits: 4},
	}, 0, 0)
	e.Pins = 0b1010
	e.Step()
	if e.ISR != 0b1010 {
		t.Fatalf("ISR = %b, want 1010", e.ISR)
	}
}

func TestOUTShiftsOSRToX(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpOUT, Dest: OperandX, Bits: 8},
	}, 0, 0)
	e.OSR = 0xAB << 24
	e.Step()
	if e.X != 0xAB {
		t.Fatalf("X = %x, want ab", e.X)
	}
}

func TestPushMovesISRToRXFifo(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpPUSHPULL, IsPush: true, Block: true},
	}, 0, 0)
	e.ISR = 0xDEADBEEF
	e.Step()

	v, ok := e.PullRXFromHost()
	if !ok || v != 0xDEADBEEF {
		t.Fatalf("RX fifo = %x, %v; want deadbeef, true", v, ok)
	}
	if e.ISR != 0 {
		t.Fatalf("ISR not cleared after push")
	}
}

func TestBlockingPushStallsWhenFifoFull(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpPUSHPULL, IsPush: true, Block: true},
	}, 0, 0)
	for i := 0; i < 8; i++ {
		e.RX.push(uint32(i))
	}

	if e.Step() {
		t.Fatalf("expected stall, FIFO is full")
	}
	if !e.Stalled() {
		t.Fatalf("Stalled() should report true")
	}
	if e.PC != 0 {
		t.Fatalf("PC moved while stalled")
	}

	e.PullRXFromHost()
	if !e.Step() {
		t.Fatalf("expected stall to clear once FIFO has room")
	}
	if e.Stalled() {
		t.Fatalf("Stalled() should report false after recovery")
	}
}

func TestNonBlockingPullNoOpsOnEmptyFifo(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpPUSHPULL, IsPush: false, Block: false},
		{Op: OpJMP, Cond: CondAlways, Addr: 1},
	}, 0, 1)
	if !e.Step() {
		t.Fatalf("non-blocking pull on empty FIFO should not stall")
	}
	if e.PC != 1 {
		t.Fatalf("PC = %d, want 1 (instruction completed despite empty TX)", e.PC)
	}
}

func TestPullLoadsOSRFromTXFifo(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpPUSHPULL, IsPush: false, Block: true},
	}, 0, 0)
	e.PushTXFromHost(0x12345678)
	e.Step()
	if e.OSR != 0x12345678 {
		t.Fatalf("OSR = %x, want 12345678", e.OSR)
	}
}

func TestDelayHoldsBeforeNextFetch(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpSET, Dest: OperandX, SetData: 7, Delay: 2},
		{Op: OpSET, Dest: OperandY, SetData: 9},
	}, 0, 1)

	e.Step() // executes instr 0, now delaying
	if e.PC != 1 {
		t.Fatalf("PC should advance immediately after the SET executes, delay happens post-advance")
	}
	if e.Y != 0 {
		t.Fatalf("next instruction must not run yet: Y = %d", e.Y)
	}
	e.Step() // consumes delay cycle 1
	if e.Y != 0 {
		t.Fatalf("still delaying: Y = %d", e.Y)
	}
	e.Step() // consumes delay cycle 2
	if e.Y != 0 {
		t.Fatalf("still delaying: Y = %d", e.Y)
	}
	e.Step() // finally executes instr 1
	if e.Y != 9 {
		t.Fatalf("Y = %d, want 9 once delay elapsed", e.Y)
	}
}

func TestAutopushFiresAtThreshold(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpIN, Source: OperandPins, Bits: 8},
	}, 0, 0)
	e.AutoPush = true
	e.AutoPushThreshold = 8
	e.Pins = 0x42
	e.Step()

	v, ok := e.PullRXFromHost()
	if !ok || v != 0x42 {
		t.Fatalf("autopush did not deliver byte, got %x, %v", v, ok)
	}
}

func TestIRQSetAndWait(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpIRQ, WaitIndex: 2},
		{Op: OpWAIT, Source: OperandNull, WaitIndex: 2, WaitPolarity: true},
		{Op: OpJMP, Cond: CondAlways, Addr: 2},
	}, 0, 2)

	e.Step() // IRQ set 2
	e.Step() // WAIT should be satisfied immediately
	if e.PC != 2 {
		t.Fatalf("PC = %d, want 2 once IRQ flag observed", e.PC)
	}
}

func TestWrapReturnsToBottom(t *testing.T) {
	e := NewEngine([]Instruction{
		{Op: OpSET, Dest: OperandX, SetData: 1},
		{Op: OpSET, Dest: OperandY, SetData: 2},
	}, 0, 1)
	e.Step()
	if e.PC != 1 {
		t.Fatalf("PC = %d, want 1", e.PC)
	}
	e.Step()
	if e.PC != 0 {
		t.Fatalf("PC = %d, want 0 after wrapping past top", e.PC)
	}
}

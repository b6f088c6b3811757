package main

import "testing"

// Encodings taken from spec.md §8's concrete scenarios.
func TestDecodeAddImmediate(t *testing.T) {
	di, err := decode(0x00500093) // addi x1, x0, 5
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if di.Operation.Kind != OpRegImm {
		t.Fatalf("expected OpRegImm, got %v", di.Operation.Kind)
	}
	if di.Operation.Reg.Rd != 1 || di.Operation.Reg.Rs1 != 0 {
		t.Fatalf("unexpected rd/rs1: rd=%d rs1=%d", di.Operation.Reg.Rd, di.Operation.Reg.Rs1)
	}
	if di.Operation.Reg.Imm != 5 {
		t.Fatalf("expected imm=5, got %d", di.Operation.Reg.Imm)
	}
	if di.Operation.Reg.Op != ALUAdd {
		t.Fatalf("expected ALUAdd, got %v", di.Operation.Reg.Op)
	}
}

func TestDecodeAddRegister(t *testing.T) {
	di, err := decode(0x002081b3) // add x3, x1, x2
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if di.Operation.Kind != OpRegReg {
		t.Fatalf("expected OpRegReg, got %v", di.Operation.Kind)
	}
	if di.Operation.Reg.Rd != 3 || di.Operation.Reg.Rs1 != 1 || di.Operation.Reg.Rs2 != 2 {
		t.Fatalf("unexpected operands: %+v", di.Operation.Reg)
	}
}

func TestDecodeNegativeImmediateSignExtends(t *testing.T) {
	di, err := decode(0xfff00293) // addi x5, x0, -1
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if di.Operation.Reg.Imm != -1 {
		t.Fatalf("expected imm=-1, got %d", di.Operation.Reg.Imm)
	}
}

func TestDecodeShiftsUseShamtNotSignExtendedImm(t *testing.T) {
	// srai x6, x5, 1 -> funct7=0x20, funct3=0x5, shamt=1
	di, err := decode(0x4012d313)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if di.Operation.Reg.Op != ALUSra {
		t.Fatalf("expected ALUSra, got %v", di.Operation.Reg.Op)
	}
	if di.Operation.Reg.Imm != 1 {
		t.Fatalf("expected shamt=1, got %d", di.Operation.Reg.Imm)
	}
}

func TestDecodeLoadSignAndSize(t *testing.T) {
	cases := []struct {
		name   string
		word   uint32
		size   int
		signed bool
	}{
		{"lb", 0x00008083 | (0x0 << 12), 1, true},
		{"lbu", 0x00008083 | (0x4 << 12), 1, false},
	}
	for _, c := range cases {
		di, err := decode(c.word)
		if err != nil {
			t.Fatalf("%s: decode: %v", c.name, err)
		}
		if di.Operation.Kind != OpLoad {
			t.Fatalf("%s: expected OpLoad, got %v", c.name, di.Operation.Kind)
		}
		if di.Operation.Load.Size != c.size || di.Operation.Load.Signed != c.signed {
			t.Fatalf("%s: expected size=%d signed=%v, got size=%d signed=%v",
				c.name, c.size, c.signed, di.Operation.Load.Size, di.Operation.Load.Signed)
		}
	}
}

func TestDecodeLUI(t *testing.T) {
	di, err := decode(0xabcde337) // lui x6, 0xABCDE
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if di.Operation.Kind != OpRegWrite || di.Operation.RegWrite.IsPC {
		t.Fatalf("expected non-PC RegWrite for LUI, got %+v", di.Operation.RegWrite)
	}
	if di.Operation.RegWrite.Value != 0xABCDE000 {
		t.Fatalf("expected value=0xABCDE000, got 0x%X", di.Operation.RegWrite.Value)
	}
}

func TestDecodeAUIPCSetsIsPC(t *testing.T) {
	di, err := decode(0xabcde397) // auipc x7, 0xABCDE
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if di.Operation.Kind != OpRegWrite || !di.Operation.RegWrite.IsPC {
		t.Fatalf("expected IsPC RegWrite for AUIPC, got %+v", di.Operation.RegWrite)
	}
}

func TestDecodeBranchCarriesIdenticalOperandsOnBothFields(t *testing.T) {
	// beq x1, x0, +8
	di, err := decode(0x00008463)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if di.Operation.Kind != OpBranch {
		t.Fatalf("expected OpBranch, got %v", di.Operation.Kind)
	}
	if di.NextPC.Kind != NextBranch {
		t.Fatalf("expected NextBranch, got %v", di.NextPC.Kind)
	}
	if di.Operation.Branch.Offset != di.NextPC.Branch.Offset {
		t.Fatalf("operation and next-pc branch offsets diverge: %d vs %d",
			di.Operation.Branch.Offset, di.NextPC.Branch.Offset)
	}
}

func TestDecodeUnknownOpcodeFails(t *testing.T) {
	_, err := decode(0x0000007F)
	if err == nil {
		t.Fatalf("expected DecodeError for unknown opcode")
	}
	if _, ok := err.(*DecodeError); !ok {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
}

func TestDecodeEcallEbreak(t *testing.T) {
	di, err := decode(0x00000073)
	if err != nil || di.Operation.SystemCall != SysEcall {
		t.Fatalf("expected SysEcall, got %+v err=%v", di.Operation, err)
	}
	di, err = decode(0x00100073)
	if err != nil || di.Operation.SystemCall != SysEbreak {
		t.Fatalf("expected SysEbreak, got %+v err=%v", di.Operation, err)
	}
}

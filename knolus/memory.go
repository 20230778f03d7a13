package knolus

import (
	"math/big"
	"unsafe"
)

const (
	estimatedValueBytes        = 24
	estimatedStringHeaderBytes = 16
	estimatedVectorBaseBytes   = 32
	estimatedMapBaseBytes      = 48
	estimatedMapEntryBytes     = 32
	estimatedContextBytes      = 64
	estimatedNodeBytes         = 32
)

type memoryEstimator struct {
	seenContexts map[*Context]struct{}
	seenArrays   map[*Array]struct{}
	seenStrings  map[stringIdentity]struct{}
}

type stringIdentity struct {
	ptr uintptr
	len int
}

func newMemoryEstimator() *memoryEstimator {
	return &memoryEstimator{
		seenContexts: make(map[*Context]struct{}),
		seenArrays:   make(map[*Array]struct{}),
		seenStrings:  make(map[stringIdentity]struct{}),
	}
}

// EstimateMemory approximates the bytes held by the variables visible from c
// plus extras. Values shared between variables are counted once.
func EstimateMemory(c *Context, extras ...Value) int {
	est := newMemoryEstimator()
	total := est.context(c)
	for _, extra := range extras {
		total += est.value(extra)
	}
	return total
}

func (est *memoryEstimator) context(c *Context) int {
	if c == nil {
		return 0
	}
	if _, seen := est.seenContexts[c]; seen {
		return 0
	}
	est.seenContexts[c] = struct{}{}

	size := estimatedContextBytes + estimatedMapBaseBytes + len(c.variables)*estimatedMapEntryBytes
	for name, stored := range c.variables {
		size += estimatedStringHeaderBytes + len(name)
		size += est.value(stored.value)
	}
	size += estimatedMapBaseBytes + len(c.recursion)*estimatedMapEntryBytes
	size += est.context(c.parent)
	return size
}

func (est *memoryEstimator) value(val Value) int {
	size := estimatedValueBytes

	switch val.kind {
	case KindString:
		size += estimatedStringHeaderBytes + est.stringPayloadSize(val.data.(string))
	case KindBigInt:
		size += len(val.data.(*big.Int).Bits()) * int(unsafe.Sizeof(big.Word(0)))
	case KindLazyString:
		for _, part := range val.data.([]Value) {
			size += est.value(part)
		}
	case KindArray:
		size += est.array(val.data.(*Array))
	case KindVariableReference:
		size += estimatedStringHeaderBytes + len(val.data.(string))
	case KindPropertyReference:
		ref := val.data.(*PropertyReference)
		size += estimatedStringHeaderBytes*2 + len(ref.Variable) + len(ref.Property)
	case KindFunctionCall:
		call := val.data.(*FunctionCall)
		size += estimatedNodeBytes + len(call.Name) + est.arguments(call.Args)
	case KindMemberFunctionCall:
		call := val.data.(*MemberFunctionCall)
		size += estimatedNodeBytes + len(call.Name) + est.value(call.Receiver) + est.arguments(call.Args)
	case KindExpression:
		expr := val.data.(*Expression)
		size += estimatedNodeBytes + est.value(expr.Start)
		for _, op := range expr.Operations {
			size += est.value(op.Value)
		}
	}

	return size
}

func (est *memoryEstimator) arguments(args []Argument) int {
	size := 0
	for _, arg := range args {
		size += estimatedStringHeaderBytes + len(arg.Name) + est.value(arg.Value)
	}
	return size
}

func (est *memoryEstimator) stringPayloadSize(str string) int {
	if len(str) == 0 {
		return 0
	}
	key := stringIdentity{
		ptr: uintptr(unsafe.Pointer(unsafe.StringData(str))),
		len: len(str),
	}
	if _, seen := est.seenStrings[key]; seen {
		return 0
	}
	est.seenStrings[key] = struct{}{}
	return len(str)
}

func (est *memoryEstimator) array(a *Array) int {
	if _, seen := est.seenArrays[a]; seen {
		return 0
	}
	est.seenArrays[a] = struct{}{}
	size := estimatedVectorBaseBytes
	for _, item := range a.Items() {
		size += est.value(item)
	}
	return size
}

package diag

import (
	"fmt"
)

// Code identifies a diagnostic kind. Ranges are reserved per phase so codes
// stay stable as phases grow: 1000 unit I/O, 3000 aggregate resolution,
// 4000 type inference, 9000 internal errors.
type Code uint16

const (
	UnknownCode Code = 0

	// Unit loading
	IOLoadUnitError   Code = 1001
	UnitSchemaError   Code = 1002
	UnitCorruptError  Code = 1003
	UnitMissingSource Code = 1004

	// Aggregate type resolution
	AggInfo           Code = 3000
	AggUnknownType    Code = 3001
	AggDuplicateType  Code = 3002
	AggDuplicateField Code = 3003
	AggRecursiveType  Code = 3004
	AggEmptyType      Code = 3005
	AggBadAnnotation  Code = 3006

	// Type inference
	InferTypeConflict   Code = 4001
	InferUnresolvedType Code = 4002
	InferNotSimple      Code = 4003
	InferNotArray       Code = 4004
	InferNotReg         Code = 4005
	InferNotBypass      Code = 4006
	InferNotBool        Code = 4007
	InferNotPort        Code = 4008
	InferBadIndex       Code = 4009
	InferUnknownField   Code = 4010
	InferBadAggLiteral  Code = 4011
	InferCastError      Code = 4012
	InferBypassNoWriter Code = 4013
	InferUnboundIdent   Code = 4014
	InferConcatOperand  Code = 4015

	// Internal
	InternalNoConverge Code = 9001
)

func (c Code) String() string {
	return fmt.Sprintf("RPL%04d", uint16(c))
}

package quill

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

const (
	TypeInt   = "int"
	TypeFloat = "float"
	TypeBool  = "bool"
)

var builtinTypes = []string{TypeInt, TypeFloat, TypeBool}

func defineBuiltinTypes(scope *ScopedSymbolTable) {
	for _, name := range builtinTypes {
		scope.InsertSymbol(&Symbol{Name: name, Kind: BuiltInTypeSymbol})
	}
}

func isNumeric(typ *Symbol) bool {
	return typ != nil && (typ.Name == TypeInt || typ.Name == TypeFloat)
}

func isBool(typ *Symbol) bool {
	return typ != nil && typ.Name == TypeBool
}

// llvmType maps a builtin type name to its LLVM representation.
func llvmType(name string) types.Type {
	switch name {
	case TypeInt:
		return types.I64
	case TypeFloat:
		return types.Double
	case TypeBool:
		return types.I1
	case typeVoid:
		return types.Void
	default:
		return nil
	}
}

func llvmZero(name string) constant.Constant {
	switch name {
	case TypeInt:
		return constant.NewInt(types.I64, 0)
	case TypeFloat:
		return constant.NewFloat(types.Double, 0)
	case TypeBool:
		return constant.False
	default:
		return nil
	}
}

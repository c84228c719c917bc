package loxerrors

import "errors"

// Static errors detected by the resolver. They are reported as *ParserError.
var (
	ErrParseReturnOutsideFunction               = errors.New("Can't return from top-level code.")
	ErrParseCantReturnValueFromInitializer      = errors.New("Can't return a value from an initializer.")
	ErrParseCantInitVarSelfReference            = errors.New("Can't read local variable in its own initializer.")
	ErrParseCantDuplicateVariableDefinition     = errors.New("Already a variable with this name in this scope.")
	ErrParseLocalVariableNotUsed                = errors.New("Local variable is not used.")
	ErrParseThisOutsideClass                    = errors.New("Can't use 'this' outside of a class.")
	ErrParseCantUseSuperOutsideClass            = errors.New("Can't use 'super' outside of a class.")
	ErrParseCantUseSuperInClassWithNoSuperclass = errors.New("Can't use 'super' in a class with no superclass.")
	ErrParseClassCantInheritFromItself          = errors.New("A class can't inherit from itself.")
)

package knolus

// FunctionContract validates calls of one function at the boundary.
// ValidateArgs runs before the function executes and ValidateReturn on its
// result; either may be nil.
type FunctionContract struct {
	ValidateArgs   func(args *BoundArguments) error
	ValidateReturn func(result Value) error
}

// ContractProvider exposes contracts keyed by function name.
type ContractProvider interface {
	FunctionContracts() map[string]FunctionContract
}

// ContractRestriction denies calls whose arguments or results break the
// contract registered for the function's name.
type ContractRestriction struct {
	Abstain
	contracts map[string]FunctionContract
}

// NewContractRestriction merges the contracts of every provider. Later
// providers override earlier ones for the same name.
func NewContractRestriction(providers ...ContractProvider) *ContractRestriction {
	r := &ContractRestriction{contracts: make(map[string]FunctionContract)}
	for _, provider := range providers {
		for name, contract := range provider.FunctionContracts() {
			r.contracts[Sanitize(name)] = contract
		}
	}
	return r
}

// Contracts adapts a plain map into a ContractProvider.
type Contracts map[string]FunctionContract

func (c Contracts) FunctionContracts() map[string]FunctionContract { return c }

func (r *ContractRestriction) CanRunFunction(_ *Context, fn *Function, args *BoundArguments) Verdict {
	contract, ok := r.contracts[Sanitize(fn.Name)]
	if !ok || contract.ValidateArgs == nil {
		return Pass()
	}
	if err := contract.ValidateArgs(args); err != nil {
		return Deny("%s arguments rejected: %v", fn.Name, err)
	}
	return Pass()
}

func (r *ContractRestriction) ShouldTakeFunctionResult(_ *Context, fn *Function, result Value) Verdict {
	contract, ok := r.contracts[Sanitize(fn.Name)]
	if !ok || contract.ValidateReturn == nil {
		return Pass()
	}
	if err := contract.ValidateReturn(result); err != nil {
		return Deny("%s result rejected: %v", fn.Name, err)
	}
	return Pass()
}

package tokensvc

import "context"

// MockService is a test double for Service.
// All function fields must be set before the corresponding method is called.
type MockService struct {
	ContractInfoFn func(ctx context.Context, contract string) (*ContractInfo, error)
	NumTokensFn    func(ctx context.Context, contract string) (uint64, error)
	NftInfoFn      func(ctx context.Context, contract, tokenID string) (*NftInfo, error)
	TokensFn       func(ctx context.Context, contract, owner string) ([]string, error)
}

func (m *MockService) ContractInfo(ctx context.Context, contract string) (*ContractInfo, error) {
	return m.ContractInfoFn(ctx, contract)
}
func (m *MockService) NumTokens(ctx context.Context, contract string) (uint64, error) {
	return m.NumTokensFn(ctx, contract)
}
func (m *MockService) NftInfo(ctx context.Context, contract, tokenID string) (*NftInfo, error) {
	return m.NftInfoFn(ctx, contract, tokenID)
}
func (m *MockService) Tokens(ctx context.Context, contract, owner string) ([]string, error) {
	return m.TokensFn(ctx, contract, owner)
}

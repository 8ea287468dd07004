// Package ledger defines the application-side port to the append-only
// ledger. Calls name a channel-scoped chaincode function and run under the
// identity of an enrolled org member; the infrastructure adapter owns the
// transport.
package ledger

import "context"

// Call is one chaincode invocation or query.
type Call struct {
	Channel   string
	Chaincode string
	Function  string
	Args      []string
	// Identity is the enrolled identity the call runs as.
	Identity string
	// Org is the membership organization of the identity.
	Org string
}

// Gateway is the port to the ledger's invocation API.
//
// Invoke submits a state-changing transaction and returns its receipt.
// Query evaluates a read-only function and returns the decoded record.
// RegisterIdentity enrolls an identity with an org so later calls can run
// under it; enrolling an already-enrolled identity succeeds.
// IsRegistered checks enrollment without side effects.
//
// Transport failures, timeouts and malformed responses in contexts that
// require a well-formed record surface as ledger_unavailable errors.
type Gateway interface {
	Invoke(ctx context.Context, call Call) (Receipt, error)
	Query(ctx context.Context, call Call) (Record, error)
	RegisterIdentity(ctx context.Context, identity, org, role string, admin string) (Credential, error)
	IsRegistered(ctx context.Context, identity, org string) (bool, error)
}

// Credential is the enrollment result for a registered identity. The secret
// is only present when the registrar returned one.
type Credential struct {
	Identity string
	Org      string
	Secret   string
}

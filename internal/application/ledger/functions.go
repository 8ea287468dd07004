package ledger

// Chaincode function names exposed by the resident-management contract.
const (
	FnRegisterResident         = "RegisterResident"
	FnUpdateResident           = "UpdateResident"
	FnBlockResident            = "BlockResident"
	FnUnblockResident          = "UnblockResident"
	FnGetResident              = "GetResident"
	FnAddVisitor               = "AddVisitor"
	FnUpdateVisitor            = "UpdateVisitor"
	FnBlockVisitor             = "BlockVisitor"
	FnUnblockVisitor           = "UnblockVisitor"
	FnGetVisitor               = "GetVisitor"
	FnAddVisitRequest          = "AddVisitRequest"
	FnUpdateVisitRequestStatus = "UpdateVisitRequestStatus"
	FnGetVisitRequest          = "GetVisitRequest"
	FnSaveLogToChain           = "SaveLogToChain"
)

// CallBuilder binds the configured channel and chaincode name so use cases
// only supply function, identity and args.
type CallBuilder struct {
	channel   string
	chaincode string
}

func NewCallBuilder(channel, chaincode string) CallBuilder {
	return CallBuilder{channel: channel, chaincode: chaincode}
}

func (b CallBuilder) Call(fn, identity, org string, args ...string) Call {
	return Call{
		Channel:   b.channel,
		Chaincode: b.chaincode,
		Function:  fn,
		Args:      args,
		Identity:  identity,
		Org:       org,
	}
}

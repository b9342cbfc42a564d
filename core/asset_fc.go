package core

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// fcAssetNamespace roots the uuid v5 derivation for FC asset ids. Any fixed
// uuid works as a namespace; this one is itself derived so it isn't a
// copy-pasted RFC example namespace.
var fcAssetNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("keypom.fc-asset"))

// fcMethodCanonical is the JSON shape DeriveFCAssetID hashes: MethodData
// itself doesn't marshal AttachedDeposit (Balance wraps an unexported
// *big.Int), so this mirrors the fields that make two method sets
// equivalent with the Balance rendered as its canonical decimal string.
type fcMethodCanonical struct {
	ReceiverID      AccountID `json:"receiver_id"`
	MethodName      string    `json:"method_name"`
	Args            string    `json:"args"`
	AttachedDeposit string    `json:"attached_deposit"`
	AttachedGas     Gas       `json:"attached_gas"`
}

// FCAsset is a recipe for a sequential downstream call pipeline (spec.md §3,
// §4.3 FC). FC assets are "ever-empty" (never consume pool) and their
// success/failure is intentionally ignored in reconciliation.
type FCAsset struct {
	id      AssetID
	Methods []MethodData
}

// NewFCAsset constructs an FC asset. id should be produced by
// DeriveFCAssetID (DESIGN.md open question 1) rather than chosen ad hoc.
func NewFCAsset(id AssetID, methods []MethodData) *FCAsset {
	return &FCAsset{id: id, Methods: methods}
}

func (a *FCAsset) AssetID() AssetID { return a.id }

// ClaimAsset composes and dispatches each method's templated args in order
// (spec.md §4.3 FC: "sequentially-chained call pipeline"). The pipeline is
// a single promise from the claim machine's point of view, so only the first
// error (if any) is surfaced; reconciliation ignores it either way.
func (a *FCAsset) ClaimAsset(cc ClaimContext, meta AssetMetadata, deps Dependencies) (*Dispatch, error) {
	if deps.FC == nil {
		return &Dispatch{AssetID: a.id, FCOpaque: true}, nil
	}
	var firstErr error
	for _, m := range a.Methods {
		if m.ReceiverToClaimer && cc.Receiver == AccountID(m.ReceiverID) {
			continue // skipped: claimer equals this method's receiver (no check against the contract's own account)
		}
		args, err := buildFCArgs(m, cc.FCArgs, cc.Receiver, cc.DropID, cc.KeyID, cc.FunderID)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fc asset %s: %w", a.id, err)
			}
			continue
		}
		if _, err := deps.FC.Call(cc.Ctx, m.ReceiverID, m.MethodName, []byte(args), m.AttachedDeposit, m.AttachedGas); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return &Dispatch{AssetID: a.id, FCOpaque: true}, firstErr
}

// OnFailedClaim refunds the sum of attached deposits across methods
// (spec.md §4.3 FC on_failed_claim).
func (a *FCAsset) OnFailedClaim(meta AssetMetadata, d *Dispatch) Balance {
	total := ZeroBalance()
	for _, m := range a.Methods {
		total = total.Add(m.AttachedDeposit)
	}
	return total
}

func (a *FCAsset) IsEmpty() bool { return true }

func (a *FCAsset) YoctoRefundAmount(meta AssetMetadata) Balance {
	total := ZeroBalance()
	for _, m := range a.Methods {
		total = total.Add(m.AttachedDeposit)
	}
	return total
}

func (a *FCAsset) RequiredAssetGas() Gas {
	var total Gas
	for _, m := range a.Methods {
		total += m.AttachedGas
	}
	return total
}

// DeriveFCAssetID computes a deterministic, content-addressed id for a set
// of FC methods, replacing the reference's order-dependent
// asset_by_id.len() scheme per spec.md §9 note 3 / DESIGN.md open question
// 1. Two drops (or two add_keys calls) that declare byte-identical method
// sets get the same asset id, which is the point: dedup should not depend
// on insertion order.
func DeriveFCAssetID(methods []MethodData) AssetID {
	canon := make([]fcMethodCanonical, len(methods))
	for i, m := range methods {
		canon[i] = fcMethodCanonical{
			ReceiverID:      m.ReceiverID,
			MethodName:      m.MethodName,
			Args:            m.Args,
			AttachedDeposit: m.AttachedDeposit.String(),
			AttachedGas:     m.AttachedGas,
		}
	}
	data, err := json.Marshal(canon)
	if err != nil {
		// json.Marshal only fails on unsupported types; canon is all
		// plain strings/ints, so this is unreachable in practice.
		data = []byte(fmt.Sprintf("%v", canon))
	}
	id := uuid.NewSHA1(fcAssetNamespace, data)
	return AssetID(fmt.Sprintf("fc-%s", id.String()))
}

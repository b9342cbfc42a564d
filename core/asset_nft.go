package core

import (
	"fmt"
	"sync"
)

// NFTAsset is a LIFO queue of concrete token ids deposited by the funder
// (spec.md §3, §4.3 NFT). Mirrors the teacher's SYN721Token owners map in
// spirit, but Keypom's NFT asset only escrows token ids for a single
// downstream contract rather than minting its own.
type NFTAsset struct {
	mu         sync.Mutex
	ContractID AccountID
	TokenIDs   []string // insertion order; last element claims next
}

func NewNFTAsset(contractID AccountID, tokenIDs []string) *NFTAsset {
	cp := make([]string, len(tokenIDs))
	copy(cp, tokenIDs)
	return &NFTAsset{ContractID: contractID, TokenIDs: cp}
}

func (a *NFTAsset) AssetID() AssetID { return AssetID(a.ContractID) }

// ClaimAsset pops the last token id (spec.md §4.3 NFT, §8 S3 LIFO ordering:
// deposits [T1,T2,T3] claim out T3,T2,T1).
func (a *NFTAsset) ClaimAsset(cc ClaimContext, meta AssetMetadata, deps Dependencies) (*Dispatch, error) {
	a.mu.Lock()
	if len(a.TokenIDs) == 0 {
		a.mu.Unlock()
		logger().WithField("contract", a.ContractID).Warn("keypom: NFT pool exhausted, skipping claim_asset call")
		return nil, nil
	}
	last := len(a.TokenIDs) - 1
	tokenID := a.TokenIDs[last]
	a.TokenIDs = a.TokenIDs[:last]
	a.mu.Unlock()

	d := &Dispatch{AssetID: a.AssetID(), NFTTokenID: tokenID}
	if deps.NFT == nil {
		return d, nil
	}
	out, err := deps.NFT.NFTTransfer(cc.Ctx, a.ContractID, cc.Receiver, tokenID, "Keypom Linkdrop")
	if err != nil {
		return d, err
	}
	if !out.Success {
		return d, fmt.Errorf("%w: nft transfer rejected", ErrCallRejected)
	}
	return d, nil
}

// OnFailedClaim re-inserts the captured token id at the end of the list,
// matching spec.md §4.3's "re-insert token_id at the end" (not restoring
// LIFO order exactly, by design — see spec.md §4.2 Phase 2c).
func (a *NFTAsset) OnFailedClaim(meta AssetMetadata, d *Dispatch) Balance {
	if d != nil && d.NFTTokenID != "" {
		a.mu.Lock()
		a.TokenIDs = append(a.TokenIDs, d.NFTTokenID)
		a.mu.Unlock()
	}
	return ZeroBalance()
}

func (a *NFTAsset) IsEmpty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.TokenIDs) == 0
}

func (a *NFTAsset) YoctoRefundAmount(meta AssetMetadata) Balance { return ZeroBalance() }

func (a *NFTAsset) RequiredAssetGas() Gas { return nftClaimGas }

const nftClaimGas Gas = 12_000_000_000_000

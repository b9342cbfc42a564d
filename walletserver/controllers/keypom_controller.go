package controllers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	core "keypom/core"
	"keypom/walletserver/services"
)

func decodePublicKey(s string) (core.PublicKey, error) {
	var pk core.PublicKey
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(raw) != len(pk) {
		return pk, fmt.Errorf("invalid public key %q: must be base64 of %d raw bytes", s, len(pk))
	}
	copy(pk[:], raw)
	return pk, nil
}

// KeypomController provides HTTP handlers over a KeypomService, translating
// JSON request bodies into core input structs and core results back into
// JSON, without the controller ever touching Store locking directly.
type KeypomController struct {
	svc *services.KeypomService
}

func NewKeypomController(svc *services.KeypomService) *KeypomController {
	return &KeypomController{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// assetSpec is the wire shape for an asset, kept separate from
// core.AssetInput so the HTTP API's JSON field names don't couple to
// internal Go field names.
type assetSpec struct {
	Kind          string `json:"kind"`
	FTContractID  string `json:"ft_contract_id,omitempty"`
	NFTContractID string `json:"nft_contract_id,omitempty"`
	TokensPerUse  string `json:"tokens_per_use,omitempty"`
}

func (a assetSpec) toCore() (core.AssetInput, error) {
	in := core.AssetInput{FTContractID: core.AccountID(a.FTContractID), NFTContractID: core.AccountID(a.NFTContractID)}
	switch a.Kind {
	case "ft":
		in.Kind = core.AssetFT
	case "nft":
		in.Kind = core.AssetNFT
	case "near":
		in.Kind = core.AssetNear
	case "none", "":
		in.Kind = core.AssetNone
	default:
		return in, fmt.Errorf("unknown asset kind %q", a.Kind)
	}
	if a.TokensPerUse != "" {
		b, err := core.BalanceFromString(a.TokensPerUse)
		if err != nil {
			return in, fmt.Errorf("parsing tokens_per_use: %w", err)
		}
		in.TokensPerUse = &b
	}
	return in, nil
}

type createDropRequest struct {
	DropID          string      `json:"drop_id"`
	FunderID        string      `json:"funder_id"`
	MaxKeyUses      uint64      `json:"max_key_uses"`
	PublicKeys      []string    `json:"public_keys"`
	AttachedDeposit string      `json:"attached_deposit"`
	Assets          []assetSpec `json:"assets_for_all_uses"`
}

func (kc *KeypomController) CreateDrop(w http.ResponseWriter, r *http.Request) {
	var req createDropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	keys, err := decodePublicKeys(req.PublicKeys)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	deposit := core.ZeroBalance()
	if req.AttachedDeposit != "" {
		if deposit, err = core.BalanceFromString(req.AttachedDeposit); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	assets := make([]core.AssetInput, 0, len(req.Assets))
	for _, a := range req.Assets {
		in, err := a.toCore()
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		assets = append(assets, in)
	}
	if len(assets) == 0 {
		assets = []core.AssetInput{{Kind: core.AssetNone}}
	}
	drop, surplus, err := kc.svc.CreateDrop(core.CreateDropInput{
		DropID:           core.DropID(req.DropID),
		FunderID:         core.AccountID(req.FunderID),
		MaxKeyUses:       req.MaxKeyUses,
		AssetsForAllUses: assets,
		PublicKeys:       keys,
		AttachedDeposit:  deposit,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"drop_id":          drop.ID,
		"num_keys":         len(keys),
		"surplus_refunded": surplus.String(),
	})
}

type addKeysRequest struct {
	DropID          string   `json:"drop_id"`
	Caller          string   `json:"caller"`
	PublicKeys      []string `json:"public_keys"`
	AttachedDeposit string   `json:"attached_deposit"`
}

func (kc *KeypomController) AddKeys(w http.ResponseWriter, r *http.Request) {
	var req addKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	keys, err := decodePublicKeys(req.PublicKeys)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	deposit := core.ZeroBalance()
	if req.AttachedDeposit != "" {
		if deposit, err = core.BalanceFromString(req.AttachedDeposit); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	surplus, err := kc.svc.AddKeys(core.AccountID(req.Caller), core.DropID(req.DropID), keys, nil, deposit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"surplus_refunded": surplus.String()})
}

type deleteKeysRequest struct {
	DropID        string   `json:"drop_id"`
	Caller        string   `json:"caller"`
	TokenIDs      []string `json:"token_ids"`
	KeepEmptyDrop bool     `json:"keep_empty_drop"`
}

func (kc *KeypomController) DeleteKeys(w http.ResponseWriter, r *http.Request) {
	var req deleteKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tokenIDs := make([]core.TokenID, 0, len(req.TokenIDs))
	for _, t := range req.TokenIDs {
		tokenIDs = append(tokenIDs, core.TokenID(t))
	}
	n, err := kc.svc.DeleteKeys(core.AccountID(req.Caller), core.DropID(req.DropID), tokenIDs, nil, req.KeepEmptyDrop)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

type claimRequest struct {
	TokenID        string `json:"token_id"`
	Receiver       string `json:"receiver"`
	CreateAccount  bool   `json:"create_account"`
	NewPublicKey   string `json:"new_public_key,omitempty"`
	FundingAccount string `json:"funding_account,omitempty"`
}

func (kc *KeypomController) Claim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in := core.ClaimInput{
		Ctx:            r.Context(),
		TokenID:        core.TokenID(req.TokenID),
		Receiver:       core.AccountID(req.Receiver),
		CreateAccount:  req.CreateAccount,
		FundingAccount: core.AccountID(req.FundingAccount),
	}
	if req.NewPublicKey != "" {
		pk, err := decodePublicKey(req.NewPublicKey)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		in.NewPublicKey = pk
	}
	result, err := kc.svc.Claim(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"key_deleted":     result.KeyDeleted,
		"drop_deleted":    result.DropDeleted,
		"refunded_funder": result.RefundedFunder.String(),
		"asset_outcomes":  result.AssetOutcomes,
	})
}

func (kc *KeypomController) DropInformation(w http.ResponseWriter, r *http.Request) {
	dropID := r.URL.Query().Get("drop_id")
	view, err := kc.svc.DropInformation(core.DropID(dropID))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (kc *KeypomController) KeyInformation(w http.ResponseWriter, r *http.Request) {
	tokenID := r.URL.Query().Get("token_id")
	view, err := kc.svc.KeyInformation(core.TokenID(tokenID))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type nftTransferRequest struct {
	TokenID      string  `json:"token_id"`
	Caller       string  `json:"caller"`
	NewPublicKey string  `json:"new_public_key"`
	ReceiverID   string  `json:"receiver_id"`
	ApprovalID   *uint64 `json:"approval_id,omitempty"`
}

func (kc *KeypomController) NFTTransfer(w http.ResponseWriter, r *http.Request) {
	var req nftTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	newPublicKey, err := decodePublicKey(req.NewPublicKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := kc.svc.NFTTransfer(core.AccountID(req.Caller), core.TokenID(req.TokenID), newPublicKey, core.AccountID(req.ReceiverID), req.ApprovalID); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (kc *KeypomController) FunderBalance(w http.ResponseWriter, r *http.Request) {
	funderID := r.URL.Query().Get("funder_id")
	bal := kc.svc.FunderBalance(core.AccountID(funderID))
	writeJSON(w, http.StatusOK, map[string]string{"balance": bal.String()})
}

func decodePublicKeys(raw []string) ([]core.PublicKey, error) {
	keys := make([]core.PublicKey, 0, len(raw))
	for _, s := range raw {
		pk, err := decodePublicKey(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

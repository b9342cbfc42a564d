package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	core "keypom/core"
)

var (
	keypomOnce  sync.Once
	keypomStore *core.Store
)

// keypomInit lazily constructs the package-level Store the same way
// access_control.go's accessInit wraps core.NewAccessController around the
// process ledger: one shared instance, built on first command invocation.
func keypomInit(cmd *cobra.Command, _ []string) error {
	keypomOnce.Do(func() {
		keypomStore = core.NewStore(core.AccountID("keypom.near"), nil, core.Dependencies{})
	})
	return nil
}

func decodePublicKey(s string) (core.PublicKey, error) {
	var pk core.PublicKey
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(raw) != len(pk) {
		return pk, fmt.Errorf("invalid public key %q: must be base64 of %d raw bytes", s, len(pk))
	}
	copy(pk[:], raw)
	return pk, nil
}

// keypomAssetSpec is the JSON shape accepted by --assets, kept
// separate from core.AssetInput so the CLI's wire format doesn't couple to
// internal field names.
type keypomAssetSpec struct {
	Kind         string `json:"kind"`
	FTContractID string `json:"ft_contract_id,omitempty"`
	NFTContractID string `json:"nft_contract_id,omitempty"`
	TokensPerUse string `json:"tokens_per_use,omitempty"`
}

func parseAssetSpecs(raw string) ([]core.AssetInput, error) {
	if raw == "" {
		return []core.AssetInput{{Kind: core.AssetNone}}, nil
	}
	var specs []keypomAssetSpec
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		return nil, fmt.Errorf("parsing --assets: %w", err)
	}
	out := make([]core.AssetInput, 0, len(specs))
	for _, s := range specs {
		in := core.AssetInput{FTContractID: core.AccountID(s.FTContractID), NFTContractID: core.AccountID(s.NFTContractID)}
		switch s.Kind {
		case "ft":
			in.Kind = core.AssetFT
		case "nft":
			in.Kind = core.AssetNFT
		case "near":
			in.Kind = core.AssetNear
		case "none", "":
			in.Kind = core.AssetNone
		default:
			return nil, fmt.Errorf("unknown asset kind %q", s.Kind)
		}
		if s.TokensPerUse != "" {
			b, err := core.BalanceFromString(s.TokensPerUse)
			if err != nil {
				return nil, fmt.Errorf("parsing tokens_per_use: %w", err)
			}
			in.TokensPerUse = &b
		}
		out = append(out, in)
	}
	return out, nil
}

func keypomCreateDropHandler(cmd *cobra.Command, args []string) error {
	dropID, _ := cmd.Flags().GetString("drop-id")
	funderID, _ := cmd.Flags().GetString("funder-id")
	maxUses, _ := cmd.Flags().GetUint64("max-uses")
	assetsRaw, _ := cmd.Flags().GetString("assets")
	keysRaw, _ := cmd.Flags().GetStringSlice("keys")
	depositRaw, _ := cmd.Flags().GetString("deposit")

	assets, err := parseAssetSpecs(assetsRaw)
	if err != nil {
		return err
	}
	keys := make([]core.PublicKey, 0, len(keysRaw))
	for _, k := range keysRaw {
		pk, err := decodePublicKey(k)
		if err != nil {
			return err
		}
		keys = append(keys, pk)
	}
	deposit := core.ZeroBalance()
	if depositRaw != "" {
		deposit, err = core.BalanceFromString(depositRaw)
		if err != nil {
			return err
		}
	}

	drop, surplus, err := keypomStore.CreateDrop(core.CreateDropInput{
		DropID:           core.DropID(dropID),
		FunderID:         core.AccountID(funderID),
		MaxKeyUses:       maxUses,
		AssetsForAllUses: assets,
		PublicKeys:       keys,
		AttachedDeposit:  deposit,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "drop %s created with %d key(s), surplus refunded %s\n", drop.ID, len(keys), surplus.String())
	return nil
}

func keypomAddKeysHandler(cmd *cobra.Command, args []string) error {
	dropID, _ := cmd.Flags().GetString("drop-id")
	caller, _ := cmd.Flags().GetString("caller")
	keysRaw, _ := cmd.Flags().GetStringSlice("keys")
	depositRaw, _ := cmd.Flags().GetString("deposit")

	keys := make([]core.PublicKey, 0, len(keysRaw))
	for _, k := range keysRaw {
		pk, err := decodePublicKey(k)
		if err != nil {
			return err
		}
		keys = append(keys, pk)
	}
	deposit := core.ZeroBalance()
	var err error
	if depositRaw != "" {
		deposit, err = core.BalanceFromString(depositRaw)
		if err != nil {
			return err
		}
	}
	surplus, err := keypomStore.AddKeys(core.AccountID(caller), core.DropID(dropID), keys, nil, deposit)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %d key(s) to drop %s, surplus refunded %s\n", len(keys), dropID, surplus.String())
	return nil
}

func keypomDeleteKeysHandler(cmd *cobra.Command, args []string) error {
	dropID, _ := cmd.Flags().GetString("drop-id")
	caller, _ := cmd.Flags().GetString("caller")
	n, err := keypomStore.DeleteKeys(core.AccountID(caller), core.DropID(dropID), nil, nil, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d key(s) from drop %s\n", n, dropID)
	return nil
}

func keypomClaimHandler(cmd *cobra.Command, args []string) error {
	tokenID, _ := cmd.Flags().GetString("token-id")
	receiver, _ := cmd.Flags().GetString("receiver")
	result, err := keypomStore.Claim(core.ClaimInput{
		TokenID:  core.TokenID(tokenID),
		Receiver: core.AccountID(receiver),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "claim on %s: key_deleted=%v drop_deleted=%v refunded=%s\n",
		tokenID, result.KeyDeleted, result.DropDeleted, result.RefundedFunder.String())
	return nil
}

func keypomBalanceHandler(cmd *cobra.Command, args []string) error {
	funderID, _ := cmd.Flags().GetString("funder-id")
	bal := keypomStore.FunderBalanceView(core.AccountID(funderID))
	fmt.Fprintln(cmd.OutOrStdout(), bal.String())
	return nil
}

func keypomDropInfoHandler(cmd *cobra.Command, args []string) error {
	dropID, _ := cmd.Flags().GetString("drop-id")
	view, err := keypomStore.GetDropInformation(core.DropID(dropID))
	if err != nil {
		return err
	}
	enc, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(enc))
	return nil
}

var keypomCmd = &cobra.Command{
	Use:               "keypom",
	Short:             "Create and manage Keypom-style capability drops",
	PersistentPreRunE: keypomInit,
}

var keypomCreateDropCmd = &cobra.Command{
	Use:   "create-drop",
	Short: "Create a new drop and mint its initial keys",
	RunE:  keypomCreateDropHandler,
}

var keypomAddKeysCmd = &cobra.Command{
	Use:   "add-keys",
	Short: "Mint additional keys under an existing drop",
	RunE:  keypomAddKeysHandler,
}

var keypomDeleteKeysCmd = &cobra.Command{
	Use:   "delete-keys",
	Short: "Delete all keys (and the drop, if left empty) for a drop",
	RunE:  keypomDeleteKeysHandler,
}

var keypomClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Redeem one use of a key",
	RunE:  keypomClaimHandler,
}

var keypomBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show a funder's prepaid balance",
	RunE:  keypomBalanceHandler,
}

var keypomDropInfoCmd = &cobra.Command{
	Use:   "drop-info",
	Short: "Show a drop's summary information",
	RunE:  keypomDropInfoHandler,
}

func init() {
	keypomCreateDropCmd.Flags().String("drop-id", "", "drop id")
	keypomCreateDropCmd.Flags().String("funder-id", "", "funder account id")
	keypomCreateDropCmd.Flags().Uint64("max-uses", 1, "uses per key")
	keypomCreateDropCmd.Flags().String("assets", "", "JSON array of asset specs, applied to every use")
	keypomCreateDropCmd.Flags().StringSlice("keys", nil, "base64-encoded ed25519 public keys")
	keypomCreateDropCmd.Flags().String("deposit", "0", "attached deposit, in yoctoNEAR-like units")

	keypomAddKeysCmd.Flags().String("drop-id", "", "drop id")
	keypomAddKeysCmd.Flags().String("caller", "", "calling account id")
	keypomAddKeysCmd.Flags().StringSlice("keys", nil, "base64-encoded ed25519 public keys")
	keypomAddKeysCmd.Flags().String("deposit", "0", "attached deposit")

	keypomDeleteKeysCmd.Flags().String("drop-id", "", "drop id")
	keypomDeleteKeysCmd.Flags().String("caller", "", "calling account id, must be the funder")

	keypomClaimCmd.Flags().String("token-id", "", "key token id")
	keypomClaimCmd.Flags().String("receiver", "", "account receiving the claimed assets")

	keypomBalanceCmd.Flags().String("funder-id", "", "funder account id")

	keypomDropInfoCmd.Flags().String("drop-id", "", "drop id")

	keypomCmd.AddCommand(keypomCreateDropCmd, keypomAddKeysCmd, keypomDeleteKeysCmd, keypomClaimCmd, keypomBalanceCmd, keypomDropInfoCmd)
}

// KeypomCmd exports the root command.
var KeypomCmd = keypomCmd

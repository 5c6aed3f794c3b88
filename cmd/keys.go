package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mezonai/starledger/sigverify"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const minisignKeySize = ed25519.SeedSize + 8

var (
	keyScheme  string
	keyTestnet bool
	signKey    string
	signMsg    string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a key pair and print its address",
	Long: `Generate a new key for one of the supported signature schemes:
- bitcoin: secp256k1 key, P2PKH address
- ed25519: base58 public key as address
- minisign: Ed25519 key with a random key id, minisign public key as address`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, address, err := generateKey(keyScheme, keyTestnet)
		if err != nil {
			return err
		}
		printKeyPanel("KEY", map[string]string{
			"Scheme":  normalizeScheme(keyScheme),
			"Address": address,
			"Key":     key,
		})
		return nil
	},
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign an ownership challenge with a key from keygen",
	RunE: func(cmd *cobra.Command, args []string) error {
		if signMsg == "" {
			return fmt.Errorf("--message is required")
		}
		address, signature, err := signMessage(keyScheme, signKey, signMsg, keyTestnet)
		if err != nil {
			return err
		}
		printKeyPanel("SIGNATURE", map[string]string{
			"Address":   address,
			"Message":   signMsg,
			"Signature": signature,
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(signCmd)

	for _, c := range []*cobra.Command{keygenCmd, signCmd} {
		c.Flags().StringVar(&keyScheme, "scheme", sigverify.SchemeBitcoin, "Signature scheme (bitcoin, ed25519 or minisign)")
		c.Flags().BoolVar(&keyTestnet, "testnet", false, "Use the testnet address version (bitcoin only)")
	}
	signCmd.Flags().StringVar(&signKey, "key", "", "Hex encoded key printed by keygen")
	signCmd.Flags().StringVar(&signMsg, "message", "", "Challenge message returned by requestValidation")
	_ = signCmd.MarkFlagRequired("key")
}

func normalizeScheme(scheme string) string {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	if scheme == "" {
		return sigverify.SchemeBitcoin
	}
	return scheme
}

func addressVersion(testnet bool) byte {
	if testnet {
		return sigverify.TestNetPubKeyHashVersion
	}
	return sigverify.MainNetPubKeyHashVersion
}

// generateKey returns the hex encoded private key and the address for it.
func generateKey(scheme string, testnet bool) (string, string, error) {
	switch normalizeScheme(scheme) {
	case sigverify.SchemeBitcoin:
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return "", "", fmt.Errorf("generate secp256k1 key: %w", err)
		}
		return hex.EncodeToString(priv.Serialize()), sigverify.P2PKHAddress(priv.PubKey(), true, addressVersion(testnet)), nil
	case sigverify.SchemeEd25519:
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return "", "", fmt.Errorf("generate ed25519 key: %w", err)
		}
		return hex.EncodeToString(priv.Seed()), sigverify.Ed25519Address(pub), nil
	case sigverify.SchemeMinisign:
		raw := make([]byte, minisignKeySize)
		if _, err := rand.Read(raw); err != nil {
			return "", "", fmt.Errorf("generate minisign key: %w", err)
		}
		priv, keyID := minisignKey(raw)
		return hex.EncodeToString(raw), sigverify.MinisignPublicKey(priv.Public().(ed25519.PublicKey), keyID), nil
	default:
		return "", "", fmt.Errorf("unsupported signature scheme %q", scheme)
	}
}

// signMessage signs message with keyHex and returns the signer's address and the signature.
func signMessage(scheme, keyHex, message string, testnet bool) (string, string, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil {
		return "", "", fmt.Errorf("decode key: %w", err)
	}

	switch normalizeScheme(scheme) {
	case sigverify.SchemeBitcoin:
		if len(raw) != secp256k1.PrivKeyBytesLen {
			return "", "", fmt.Errorf("bitcoin key must be %d bytes, got %d", secp256k1.PrivKeyBytesLen, len(raw))
		}
		priv := secp256k1.PrivKeyFromBytes(raw)
		return sigverify.P2PKHAddress(priv.PubKey(), true, addressVersion(testnet)), sigverify.SignBitcoinMessage(priv, message, true), nil
	case sigverify.SchemeEd25519:
		if len(raw) != ed25519.SeedSize {
			return "", "", fmt.Errorf("ed25519 key must be %d bytes, got %d", ed25519.SeedSize, len(raw))
		}
		priv := ed25519.NewKeyFromSeed(raw)
		return sigverify.Ed25519Address(priv.Public().(ed25519.PublicKey)), sigverify.SignEd25519(priv, message), nil
	case sigverify.SchemeMinisign:
		if len(raw) != minisignKeySize {
			return "", "", fmt.Errorf("minisign key must be %d bytes, got %d", minisignKeySize, len(raw))
		}
		priv, keyID := minisignKey(raw)
		address := sigverify.MinisignPublicKey(priv.Public().(ed25519.PublicKey), keyID)
		return address, sigverify.SignMinisign(priv, keyID, message, "message:"+message), nil
	default:
		return "", "", fmt.Errorf("unsupported signature scheme %q", scheme)
	}
}

// minisignKey splits a seed followed by an 8 byte key id.
func minisignKey(raw []byte) (ed25519.PrivateKey, [8]byte) {
	var keyID [8]byte
	copy(keyID[:], raw[ed25519.SeedSize:])
	return ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize]), keyID
}

func printKeyPanel(title string, fields map[string]string) {
	order := []string{"Scheme", "Address", "Message", "Key", "Signature"}
	var sb strings.Builder
	for _, name := range order {
		value, ok := fields[name]
		if !ok {
			continue
		}
		sb.WriteString(pterm.Sprintfln("%s: %s", pterm.LightCyan(name), value))
	}
	pterm.DefaultBox.
		WithHorizontalPadding(2).
		WithTitle(pterm.LightYellow("|" + title + "|")).
		WithTitleTopCenter().
		Println(strings.TrimRight(sb.String(), "\n"))
}

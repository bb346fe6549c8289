// Copyright 2025 Meridian Protocol
//
// EVM Relayer Operator
// receivePayload submission and receipt-confirmation polling

package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

// maxConfirmationChecks bounds how long Checking polls a receipt that
// simply hasn't landed yet before giving up as NotBroadcasted, mirroring
// the native adapter's bounded-retry pattern for the EVM side.
const maxConfirmationChecks = 40

// confirmationPollInterval is the sleep between unconfirmed receipt polls.
const confirmationPollInterval = 15 * time.Second

// receivePayloadArgs packs the arguments to the bridge contract's
// destination-side entry point: the originating chain id, nonce, sender
// address, this chain's lock contract, canonical payload, the concatenated
// 65-byte certificate signatures gathered from the validator set, and the
// gas limit forwarded to the inner release/mint call.
var receivePayloadArgs abi.Arguments

func init() {
	mustType := func(t string) abi.Type {
		ty, err := abi.NewType(t, "", nil)
		if err != nil {
			panic(err)
		}
		return ty
	}
	receivePayloadArgs = abi.Arguments{
		{Type: mustType("uint16")},
		{Type: mustType("uint256")},
		{Type: mustType("bytes")},
		{Type: mustType("address")},
		{Type: mustType("bytes")},
		{Type: mustType("bytes")},
		{Type: mustType("uint256")},
	}
}

var receivePayloadSelector = crypto.Keccak256([]byte("receivePayload(uint16,uint256,bytes,address,bytes,bytes,uint256)"))[:4]

// OperatorAdapter is the EVM implementation of chain.Operator: it submits
// the receive_payload call carrying every gathered certificate, then hands
// back an EVMPendingTx that polls for confirmation depth.
type OperatorAdapter struct {
	profile       chain.Profile
	rpc           RPC
	wallet        *ecdsa.PrivateKey
	address       common.Address
	bridgeAddr    common.Address
	lockAddr      common.Address
	confirmations uint64
}

// NewOperatorAdapter builds an OperatorAdapter for the chain described by
// profile, submitting receive_payload calls to bridgeAddr. lockAddr is this
// chain's lock contract, the same address the destination-side signers
// committed to in their certificates.
func NewOperatorAdapter(profile chain.Profile, rpc RPC, privKeyHex string, bridgeAddr, lockAddr common.Address) (*OperatorAdapter, error) {
	wallet, err := crypto.HexToECDSA(strings.TrimPrefix(privKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("evm operator: parse private key: %w", err)
	}
	return &OperatorAdapter{
		profile:       profile,
		rpc:           rpc,
		wallet:        wallet,
		address:       crypto.PubkeyToAddress(wallet.PublicKey),
		bridgeAddr:    bridgeAddr,
		lockAddr:      lockAddr,
		confirmations: uint64(profile.Confirmations),
	}, nil
}

// Profile implements chain.Operator.
func (o *OperatorAdapter) Profile() chain.Profile { return o.profile }

// concatSignatures concatenates every certificate's 65-byte signature, in
// the order they were gathered, the on-chain verifier's expected layout.
func concatSignatures(tx txmodel.CanonicalTx) ([]byte, error) {
	var out []byte
	for _, cert := range tx.Certificates {
		sig, err := hexDecodeSig(cert.Signature)
		if err != nil {
			return nil, fmt.Errorf("evm operator: bad certificate signature from %s: %w", cert.Signer, err)
		}
		out = append(out, sig...)
	}
	return out, nil
}

func hexDecodeSig(s string) ([]byte, error) {
	return hexDecode(strings.TrimPrefix(s, "0x"))
}

// Execute implements chain.Operator: builds and submits the receive_payload
// transaction carrying tx's gathered certificates, returning tx with
// ToChainTxHash populated.
func (o *OperatorAdapter) Execute(ctx context.Context, tx txmodel.CanonicalTx) (txmodel.CanonicalTx, error) {
	payload, err := tx.EthPayload()
	if err != nil {
		return tx, fmt.Errorf("evm operator: decode payload: %w", err)
	}
	sigs, err := concatSignatures(tx)
	if err != nil {
		return tx, err
	}

	nonce, ok := new(big.Int).SetString(tx.Nonce, 10)
	if !ok {
		return tx, fmt.Errorf("evm operator: invalid nonce %q", tx.Nonce)
	}

	gasLimit := o.profile.GasLimit
	if gasLimit == 0 {
		gasLimit = 300000
	}

	packed, err := receivePayloadArgs.Pack(uint16(tx.FromChainID), nonce, addrBytes(tx.FromAddr), o.lockAddr, payload, sigs, new(big.Int).SetUint64(gasLimit))
	if err != nil {
		return tx, fmt.Errorf("evm operator: pack call data: %w", err)
	}
	data := append(append([]byte{}, receivePayloadSelector...), packed...)

	accountNonce, err := o.rpc.PendingNonceAt(ctx, o.address)
	if err != nil {
		return tx, fmt.Errorf("evm operator: pending nonce: %w", err)
	}
	gasPrice, err := o.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return tx, fmt.Errorf("evm operator: suggest gas price: %w", err)
	}
	networkID, err := o.rpc.NetworkID(ctx)
	if err != nil {
		return tx, fmt.Errorf("evm operator: network id: %w", err)
	}

	ethTx := types.NewTransaction(accountNonce, o.bridgeAddr, big.NewInt(0), gasLimit, gasPrice, data)
	signer := types.NewEIP155Signer(networkID)
	signedTx, err := types.SignTx(ethTx, signer, o.wallet)
	if err != nil {
		return tx, fmt.Errorf("evm operator: sign tx: %w", err)
	}

	if err := o.rpc.SendTransaction(ctx, signedTx); err != nil {
		return tx, fmt.Errorf("evm operator: send tx: %w", err)
	}

	txHash := strings.ToLower(signedTx.Hash().Hex())
	tx.ToChainTxHash = &txHash
	return tx, nil
}

// Pending implements chain.Operator.
func (o *OperatorAdapter) Pending(tx txmodel.CanonicalTx) (chain.PendingTx, error) {
	if tx.ToChainTxHash == nil {
		return nil, fmt.Errorf("evm operator: pending: tx has no ToChainTxHash")
	}
	return &EVMPendingTx{
		rpc:           o.rpc,
		txHash:        common.HexToHash(*tx.ToChainTxHash),
		confirmations: o.confirmations,
	}, nil
}

// EVMPendingTx polls a submitted receive_payload transaction for a receipt
// and enough confirmation depth.
type EVMPendingTx struct {
	rpc           RPC
	txHash        common.Hash
	confirmations uint64
}

// Checking implements chain.PendingTx: it polls the receipt until it has
// at least p.confirmations confirmations or a terminal error surfaces. A
// receipt that simply hasn't landed yet is not an error; checking keeps
// polling it up to maxConfirmationChecks times before giving up as
// NotBroadcasted.
func (p *EVMPendingTx) Checking(ctx context.Context) chain.TransactionStatus {
	for attempt := 0; attempt < maxConfirmationChecks; attempt++ {
		if ctx.Err() != nil {
			return chain.TransactionStatus{Code: chain.StatusNotBroadcasted, Result: ctx.Err().Error()}
		}

		receipt, err := p.rpc.TransactionReceipt(ctx, p.txHash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				time.Sleep(confirmationPollInterval)
				continue
			}
			return chain.TransactionStatus{Code: chain.StatusRejected, Result: err.Error()}
		}
		if receipt.Status == types.ReceiptStatusFailed {
			return chain.TransactionStatus{Code: chain.StatusRejected, Result: "receipt status failed"}
		}

		latest, err := p.rpc.BlockNumber(ctx)
		if err != nil {
			return chain.TransactionStatus{Code: chain.StatusRejected, Result: err.Error()}
		}
		if latest < receipt.BlockNumber.Uint64()+p.confirmations {
			time.Sleep(confirmationPollInterval)
			continue
		}
		return chain.TransactionStatus{Code: chain.StatusSuccess, Result: p.txHash.Hex()}
	}
	return chain.TransactionStatus{Code: chain.StatusNotBroadcasted, Result: "awaiting confirmations"}
}

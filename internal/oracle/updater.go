package oracle

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Oracle prices are 18-decimal fixed point.
const priceDecimals = 18

// Minimal MultiAssetOracle ABI — only the two methods we call.
const oracleABIJSON = `[
	{
		"name": "updatePrice",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "assetId",  "type": "bytes32"},
			{"name": "newPrice", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"name": "getPriceData",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "assetId", "type": "bytes32"}],
		"outputs": [
			{"name": "price",     "type": "uint256"},
			{"name": "updatedAt", "type": "uint256"}
		]
	}
]`

// Updater pushes the index price to the MultiAssetOracle contract.
type Updater struct {
	rpc        *ethclient.Client
	privateKey *ecdsa.PrivateKey
	wallet     common.Address
	contract   common.Address
	assetID    [32]byte
	chainID    *big.Int
	gasLimit   uint64
	oracleABI  abi.ABI
}

func NewUpdater(rpcURL, privateKeyHex, contractAddr, assetIDHex string, chainID int64, gasLimit int) (*Updater, error) {
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}

	pk, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	assetID, err := ParseAssetID(assetIDHex)
	if err != nil {
		return nil, err
	}

	parsed, err := abi.JSON(strings.NewReader(oracleABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse oracle ABI: %w", err)
	}

	return &Updater{
		rpc:        rpc,
		privateKey: pk,
		wallet:     crypto.PubkeyToAddress(pk.PublicKey),
		contract:   common.HexToAddress(contractAddr),
		assetID:    assetID,
		chainID:    big.NewInt(chainID),
		gasLimit:   uint64(gasLimit),
		oracleABI:  parsed,
	}, nil
}

func (u *Updater) WalletAddress() common.Address { return u.wallet }
func (u *Updater) Close()                        { u.rpc.Close() }

// UpdatePrice signs and broadcasts an updatePrice transaction for the
// configured asset, returning the tx hash.
func (u *Updater) UpdatePrice(ctx context.Context, priceUSD float64) (string, error) {
	if priceUSD <= 0 {
		return "", fmt.Errorf("oracle: price must be positive, got %f", priceUSD)
	}

	data, err := u.oracleABI.Pack("updatePrice", u.assetID, PriceToWei(priceUSD))
	if err != nil {
		return "", fmt.Errorf("pack updatePrice: %w", err)
	}

	nonce, err := u.rpc.PendingNonceAt(ctx, u.wallet)
	if err != nil {
		return "", fmt.Errorf("get nonce: %w", err)
	}
	gasPrice, err := u.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("get gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &u.contract,
		Value:    big.NewInt(0),
		Gas:      u.gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(u.chainID), u.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}
	if err := u.rpc.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send tx: %w", err)
	}

	hash := signed.Hash().Hex()
	fmt.Printf("[ORACLE] Price update sent: $%.4f/hr tx=%s\n", priceUSD, hash)
	return hash, nil
}

// CurrentPrice reads the on-chain price and its last update time.
func (u *Updater) CurrentPrice(ctx context.Context) (float64, time.Time, error) {
	data, err := u.oracleABI.Pack("getPriceData", u.assetID)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("pack getPriceData: %w", err)
	}

	msg := map[string]interface{}{
		"to":   u.contract.Hex(),
		"data": fmt.Sprintf("0x%x", data),
	}
	var raw string
	if err := u.rpc.Client().CallContext(ctx, &raw, "eth_call", msg, "latest"); err != nil {
		return 0, time.Time{}, err
	}

	out, err := u.oracleABI.Unpack("getPriceData", common.FromHex(raw))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("unpack getPriceData: %w", err)
	}
	price := out[0].(*big.Int)
	updatedAt := out[1].(*big.Int)

	return WeiToPrice(price), time.Unix(updatedAt.Int64(), 0), nil
}

// PriceToWei scales a USD/hour price to the oracle's 18-decimal fixed
// point representation.
func PriceToWei(price float64) *big.Int {
	scaled := new(big.Float).Mul(big.NewFloat(price), big.NewFloat(0).SetInt(exp10(priceDecimals)))
	out, _ := scaled.Int(nil)
	return out
}

func WeiToPrice(wei *big.Int) float64 {
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), new(big.Float).SetInt(exp10(priceDecimals)))
	out, _ := f.Float64()
	return out
}

// ParseAssetID decodes a 0x-prefixed 32-byte hex asset identifier.
func ParseAssetID(hexStr string) ([32]byte, error) {
	var id [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
	if err != nil {
		return id, fmt.Errorf("parse asset id: %w", err)
	}
	if len(raw) != 32 {
		return id, fmt.Errorf("parse asset id: expected 32 bytes, got %d", len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func exp10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

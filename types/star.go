package types

import "github.com/mezonai/starledger/block"

type RequestValidationRequest struct {
	Address string `json:"address"`
}

type RequestValidationResponse struct {
	Address       string `json:"address"`
	Message       string `json:"message"`
	WindowSeconds int64  `json:"windowSeconds"`
}

type SubmitStarRequest struct {
	Address   string     `json:"address"`
	Message   string     `json:"message"`
	Signature string     `json:"signature"`
	Star      block.Star `json:"star"`
	// ClientIP is filled in by the transport, never by the client
	ClientIP string `json:"-"`
}

type GetBlockByHeightRequest struct {
	Height int64 `json:"height"`
}

type GetBlockByHashRequest struct {
	Hash string `json:"hash"`
}

type GetStarsByAddressRequest struct {
	Address string `json:"address"`
}

type GetStarsByAddressResponse struct {
	Address string             `json:"address"`
	Stars   []block.StarRecord `json:"stars"`
}

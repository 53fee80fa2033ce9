package txgrp

type buildRequest struct {
	Authority string `json:"authority" validate:"required,alphanum,min=32,max=44"`
	Name      string `json:"name" validate:"max=256"`
}

type buildResponse struct {
	Action      string `json:"action"`
	Authority   string `json:"authority"`
	PDA         string `json:"pda"`
	Blockhash   string `json:"blockhash"`
	Transaction string `json:"transaction"`
	Message     string `json:"message"`
}

type submitRequest struct {
	Transaction string `json:"transaction" validate:"required,base64"`
	Signature   string `json:"signature" validate:"omitempty,alphanum"`
}

type submitResponse struct {
	Signature string `json:"signature"`
}

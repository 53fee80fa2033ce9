package sessiongrp

type saveRequest struct {
	Name string `json:"name" validate:"max=256"`
}

type user struct {
	Authority string `json:"authority"`
	Name      string `json:"name"`
	PDA       string `json:"pda"`
	Bump      uint8  `json:"bump"`
	Owner     string `json:"owner,omitempty"`
	OnChain   string `json:"onchain"`
	Exists    bool   `json:"exists"`
}

type instruction struct {
	Name          string   `json:"name"`
	Discriminator string   `json:"discriminator"`
	Accounts      []string `json:"accounts"`
}

type programIDL struct {
	Address      string        `json:"address"`
	Name         string        `json:"name"`
	Version      string        `json:"version"`
	Instructions []instruction `json:"instructions"`
	UserData     string        `json:"user_data_discriminator"`
}

package block

// Star is the caller supplied star description. Its content is passed through as is.
type Star struct {
	Dec   string `json:"dec"`
	Ra    string `json:"ra"`
	Story string `json:"story"`
}

// StarRecord is the payload of every non-genesis block.
type StarRecord struct {
	Owner string `json:"owner"`
	Star  Star   `json:"star"`
}

// GenesisPayload is the sentinel body of the first block.
type GenesisPayload struct {
	Data string `json:"data"`
}

const GenesisData = "Genesis Block"

func NewGenesisPayload() GenesisPayload {
	return GenesisPayload{Data: GenesisData}
}

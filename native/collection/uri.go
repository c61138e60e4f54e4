package collection

import (
	"encoding/hex"
	"strconv"
)

// Interface identifiers answered by SupportsInterface.
const (
	InterfaceIDERC165         uint32 = 0x01ffc9a7
	InterfaceIDERC721         uint32 = 0x80ac58cd
	InterfaceIDERC721Metadata uint32 = 0x5b5e139f
	InterfaceIDERC2981Royalty uint32 = 0x2a55205a
)

func resolveURI(baseURI string, asset *Asset) string {
	if baseURI == "" {
		return asset.URI
	}
	if asset.URI == "" {
		return baseURI + strconv.FormatUint(asset.ID, 10)
	}
	return baseURI + asset.URI
}

func contractURI(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func supportsInterface(id uint32) bool {
	switch id {
	case InterfaceIDERC165, InterfaceIDERC721, InterfaceIDERC721Metadata, InterfaceIDERC2981Royalty:
		return true
	default:
		return false
	}
}

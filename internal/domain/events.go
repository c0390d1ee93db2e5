package domain

// EventMeta carries the log coordinates shared by every marketplace event
type EventMeta struct {
	ChainID        uint64 `json:"chain_id"`
	BlockNumber    uint64 `json:"block_number"`
	BlockTimestamp uint64 `json:"block_timestamp"` // seconds since epoch
	TxHash         string `json:"tx_hash"`
	LogIndex       uint   `json:"log_index"`
	Contract       string `json:"contract"` // emitting contract address
}

// Meta returns the event coordinates
func (m EventMeta) Meta() EventMeta {
	return m
}

// MarketEvent is a decoded marketplace log.
// The set of implementations is closed: only the variants declared in this file satisfy it.
type MarketEvent interface {
	Meta() EventMeta
	Market() Market
	marketEvent()
}

// SpentItem is an offer line item of a generic settlement
type SpentItem struct {
	ItemType   ItemType `json:"item_type"`
	Token      string   `json:"token"`
	Identifier string   `json:"identifier"`
	Amount     string   `json:"amount"`
}

// ReceivedItem is a consideration line item of a generic settlement
type ReceivedItem struct {
	ItemType   ItemType `json:"item_type"`
	Token      string   `json:"token"`
	Identifier string   `json:"identifier"`
	Amount     string   `json:"amount"`
	Recipient  string   `json:"recipient"`
}

// SeaportOrderFulfilled is the generic multi-item order settlement
type SeaportOrderFulfilled struct {
	EventMeta
	OrderHash     string         `json:"order_hash"`
	Offerer       string         `json:"offerer"`
	Zone          string         `json:"zone"`
	Recipient     string         `json:"recipient"`
	Offer         []SpentItem    `json:"offer"`
	Consideration []ReceivedItem `json:"consideration"`
}

// PunkBought is a punk-style single item purchase
type PunkBought struct {
	EventMeta
	PunkIndex   string `json:"punk_index"`
	Value       string `json:"value"`
	FromAddress string `json:"from_address"` // seller
	ToAddress   string `json:"to_address"`   // buyer
}

// FoundationReserveAuctionCreated opens an auction and carries the NFT identity
type FoundationReserveAuctionCreated struct {
	EventMeta
	Seller       string `json:"seller"`
	NFTContract  string `json:"nft_contract"`
	TokenID      string `json:"token_id"`
	ReservePrice string `json:"reserve_price"`
	AuctionID    string `json:"auction_id"`
}

// FoundationFees is the fee split reported by fee-splitting settlements
type FoundationFees struct {
	ProtocolFee string `json:"protocol_fee"`
	CreatorFee  string `json:"creator_fee"`
	SellerRev   string `json:"seller_rev"`
}

// FoundationReserveAuctionFinalized settles an auction; the NFT identity comes from the creation record
type FoundationReserveAuctionFinalized struct {
	EventMeta
	FoundationFees
	AuctionID string `json:"auction_id"`
	Seller    string `json:"seller"`
	Bidder    string `json:"bidder"`
}

// FoundationSettlement is the shape shared by the single-step fee-splitting sales
type FoundationSettlement struct {
	FoundationFees
	NFTContract string `json:"nft_contract"`
	TokenID     string `json:"token_id"`
	Seller      string `json:"seller"`
	Buyer       string `json:"buyer"`
}

// FoundationBuyPriceAccepted is a fixed price sale
type FoundationBuyPriceAccepted struct {
	EventMeta
	FoundationSettlement
}

// FoundationOfferAccepted is an accepted offer
type FoundationOfferAccepted struct {
	EventMeta
	FoundationSettlement
}

// FoundationPrivateSaleFinalized is a private sale
type FoundationPrivateSaleFinalized struct {
	EventMeta
	FoundationSettlement
	Deadline string `json:"deadline"`
}

// SuperRareSettlement is the shape shared by the currency-branching marketplace sales
type SuperRareSettlement struct {
	NFTContract string `json:"nft_contract"`
	TokenID     string `json:"token_id"`
	Seller      string `json:"seller"`
	Buyer       string `json:"buyer"`
	Currency    string `json:"currency"`
	Amount      string `json:"amount"`
}

// SuperRareSold is a buy-now sale
type SuperRareSold struct {
	EventMeta
	SuperRareSettlement
}

// SuperRareAcceptOffer is an accepted offer
type SuperRareAcceptOffer struct {
	EventMeta
	SuperRareSettlement
	SplitAddresses []string `json:"split_addresses"`
	SplitRatios    []uint8  `json:"split_ratios"`
}

// SuperRareAuctionSettled is a settled auction
type SuperRareAuctionSettled struct {
	EventMeta
	SuperRareSettlement
}

// SuperRareLegacySold is a sale or accepted bid on the legacy single-item marketplace.
// The NFT contract is the emitting contract.
type SuperRareLegacySold struct {
	EventMeta
	Buyer   string `json:"buyer"`
	Seller  string `json:"seller"`
	Amount  string `json:"amount"`
	TokenID string `json:"token_id"`
}

// SeaDropMint is a primary drop mint of quantityMinted sequential tokens
type SeaDropMint struct {
	EventMeta
	NFTContract    string `json:"nft_contract"`
	Minter         string `json:"minter"`
	FeeRecipient   string `json:"fee_recipient"`
	Payer          string `json:"payer"`
	QuantityMinted string `json:"quantity_minted"`
	UnitMintPrice  string `json:"unit_mint_price"`
	FeeBps         string `json:"fee_bps"`
	DropStageIndex string `json:"drop_stage_index"`
}

func (SeaportOrderFulfilled) Market() Market             { return MarketSeaport }
func (PunkBought) Market() Market                        { return MarketCryptoPunks }
func (FoundationReserveAuctionCreated) Market() Market   { return MarketFoundation }
func (FoundationReserveAuctionFinalized) Market() Market { return MarketFoundation }
func (FoundationBuyPriceAccepted) Market() Market        { return MarketFoundation }
func (FoundationOfferAccepted) Market() Market           { return MarketFoundation }
func (FoundationPrivateSaleFinalized) Market() Market    { return MarketFoundation }
func (SuperRareSold) Market() Market                     { return MarketSuperRare }
func (SuperRareAcceptOffer) Market() Market              { return MarketSuperRare }
func (SuperRareAuctionSettled) Market() Market           { return MarketSuperRare }
func (SuperRareLegacySold) Market() Market               { return MarketSuperRareV1 }
func (SeaDropMint) Market() Market                       { return MarketSeaDrop }

func (SeaportOrderFulfilled) marketEvent()             {}
func (PunkBought) marketEvent()                        {}
func (FoundationReserveAuctionCreated) marketEvent()   {}
func (FoundationReserveAuctionFinalized) marketEvent() {}
func (FoundationBuyPriceAccepted) marketEvent()        {}
func (FoundationOfferAccepted) marketEvent()           {}
func (FoundationPrivateSaleFinalized) marketEvent()    {}
func (SuperRareSold) marketEvent()                     {}
func (SuperRareAcceptOffer) marketEvent()              {}
func (SuperRareAuctionSettled) marketEvent()           {}
func (SuperRareLegacySold) marketEvent()               {}
func (SeaDropMint) marketEvent()                       {}

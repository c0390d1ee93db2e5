package ethereum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Transfer(address indexed from, address indexed to, uint256 indexed tokenId)
// ERC20 shares the signature with 3 topics, ERC721 carries the token id as the 4th topic
var transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// Event names
const (
	eventOrderFulfilled          = "OrderFulfilled"
	eventPunkBought              = "PunkBought"
	eventReserveAuctionCreated   = "ReserveAuctionCreated"
	eventReserveAuctionFinalized = "ReserveAuctionFinalized"
	eventBuyPriceAccepted        = "BuyPriceAccepted"
	eventOfferAccepted           = "OfferAccepted"
	eventPrivateSaleFinalized    = "PrivateSaleFinalized"
	eventSold                    = "Sold"
	eventAcceptOffer             = "AcceptOffer"
	eventAuctionSettled          = "AuctionSettled"
	eventAcceptBid               = "AcceptBid"
	eventSeaDropMint             = "SeaDropMint"
)

// seaportABI covers OrderFulfilled(bytes32 orderHash, address indexed offerer, address indexed zone,
// address recipient, SpentItem[] offer, ReceivedItem[] consideration)
const seaportABI = `[
	{"anonymous":false,"type":"event","name":"OrderFulfilled","inputs":[
		{"indexed":false,"name":"orderHash","type":"bytes32"},
		{"indexed":true,"name":"offerer","type":"address"},
		{"indexed":true,"name":"zone","type":"address"},
		{"indexed":false,"name":"recipient","type":"address"},
		{"indexed":false,"name":"offer","type":"tuple[]","components":[
			{"name":"itemType","type":"uint8"},
			{"name":"token","type":"address"},
			{"name":"identifier","type":"uint256"},
			{"name":"amount","type":"uint256"}
		]},
		{"indexed":false,"name":"consideration","type":"tuple[]","components":[
			{"name":"itemType","type":"uint8"},
			{"name":"token","type":"address"},
			{"name":"identifier","type":"uint256"},
			{"name":"amount","type":"uint256"},
			{"name":"recipient","type":"address"}
		]}
	]}
]`

const cryptoPunksABI = `[
	{"anonymous":false,"type":"event","name":"PunkBought","inputs":[
		{"indexed":true,"name":"punkIndex","type":"uint256"},
		{"indexed":false,"name":"value","type":"uint256"},
		{"indexed":true,"name":"fromAddress","type":"address"},
		{"indexed":true,"name":"toAddress","type":"address"}
	]}
]`

const foundationABI = `[
	{"anonymous":false,"type":"event","name":"ReserveAuctionCreated","inputs":[
		{"indexed":true,"name":"seller","type":"address"},
		{"indexed":true,"name":"nftContract","type":"address"},
		{"indexed":true,"name":"tokenId","type":"uint256"},
		{"indexed":false,"name":"duration","type":"uint256"},
		{"indexed":false,"name":"extensionDuration","type":"uint256"},
		{"indexed":false,"name":"reservePrice","type":"uint256"},
		{"indexed":false,"name":"auctionId","type":"uint256"}
	]},
	{"anonymous":false,"type":"event","name":"ReserveAuctionFinalized","inputs":[
		{"indexed":true,"name":"auctionId","type":"uint256"},
		{"indexed":true,"name":"seller","type":"address"},
		{"indexed":true,"name":"bidder","type":"address"},
		{"indexed":false,"name":"protocolFee","type":"uint256"},
		{"indexed":false,"name":"creatorFee","type":"uint256"},
		{"indexed":false,"name":"sellerRev","type":"uint256"}
	]},
	{"anonymous":false,"type":"event","name":"BuyPriceAccepted","inputs":[
		{"indexed":true,"name":"nftContract","type":"address"},
		{"indexed":true,"name":"tokenId","type":"uint256"},
		{"indexed":true,"name":"seller","type":"address"},
		{"indexed":false,"name":"buyer","type":"address"},
		{"indexed":false,"name":"protocolFee","type":"uint256"},
		{"indexed":false,"name":"creatorFee","type":"uint256"},
		{"indexed":false,"name":"sellerRev","type":"uint256"}
	]},
	{"anonymous":false,"type":"event","name":"OfferAccepted","inputs":[
		{"indexed":true,"name":"nftContract","type":"address"},
		{"indexed":true,"name":"tokenId","type":"uint256"},
		{"indexed":true,"name":"buyer","type":"address"},
		{"indexed":false,"name":"seller","type":"address"},
		{"indexed":false,"name":"protocolFee","type":"uint256"},
		{"indexed":false,"name":"creatorFee","type":"uint256"},
		{"indexed":false,"name":"sellerRev","type":"uint256"}
	]},
	{"anonymous":false,"type":"event","name":"PrivateSaleFinalized","inputs":[
		{"indexed":true,"name":"nftContract","type":"address"},
		{"indexed":true,"name":"tokenId","type":"uint256"},
		{"indexed":true,"name":"seller","type":"address"},
		{"indexed":false,"name":"buyer","type":"address"},
		{"indexed":false,"name":"protocolFee","type":"uint256"},
		{"indexed":false,"name":"creatorFee","type":"uint256"},
		{"indexed":false,"name":"sellerRev","type":"uint256"},
		{"indexed":false,"name":"deadline","type":"uint256"}
	]}
]`

const superRareABI = `[
	{"anonymous":false,"type":"event","name":"Sold","inputs":[
		{"indexed":true,"name":"_originContract","type":"address"},
		{"indexed":true,"name":"_buyer","type":"address"},
		{"indexed":true,"name":"_seller","type":"address"},
		{"indexed":false,"name":"_currencyAddress","type":"address"},
		{"indexed":false,"name":"_amount","type":"uint256"},
		{"indexed":false,"name":"_tokenId","type":"uint256"}
	]},
	{"anonymous":false,"type":"event","name":"AcceptOffer","inputs":[
		{"indexed":true,"name":"_originContract","type":"address"},
		{"indexed":true,"name":"_bidder","type":"address"},
		{"indexed":true,"name":"_seller","type":"address"},
		{"indexed":false,"name":"_currencyAddress","type":"address"},
		{"indexed":false,"name":"_amount","type":"uint256"},
		{"indexed":false,"name":"_tokenId","type":"uint256"},
		{"indexed":false,"name":"_splitAddresses","type":"address[]"},
		{"indexed":false,"name":"_splitRatios","type":"uint8[]"}
	]},
	{"anonymous":false,"type":"event","name":"AuctionSettled","inputs":[
		{"indexed":true,"name":"_contractAddress","type":"address"},
		{"indexed":true,"name":"_bidder","type":"address"},
		{"indexed":false,"name":"_seller","type":"address"},
		{"indexed":true,"name":"_tokenId","type":"uint256"},
		{"indexed":false,"name":"_currencyAddress","type":"address"},
		{"indexed":false,"name":"_amount","type":"uint256"}
	]}
]`

const superRareLegacyABI = `[
	{"anonymous":false,"type":"event","name":"Sold","inputs":[
		{"indexed":true,"name":"_buyer","type":"address"},
		{"indexed":true,"name":"_seller","type":"address"},
		{"indexed":false,"name":"_amount","type":"uint256"},
		{"indexed":true,"name":"_tokenId","type":"uint256"}
	]},
	{"anonymous":false,"type":"event","name":"AcceptBid","inputs":[
		{"indexed":true,"name":"_bidder","type":"address"},
		{"indexed":true,"name":"_seller","type":"address"},
		{"indexed":false,"name":"_amount","type":"uint256"},
		{"indexed":true,"name":"_tokenId","type":"uint256"}
	]}
]`

const seaDropABI = `[
	{"anonymous":false,"type":"event","name":"SeaDropMint","inputs":[
		{"indexed":true,"name":"nftContract","type":"address"},
		{"indexed":true,"name":"minter","type":"address"},
		{"indexed":true,"name":"feeRecipient","type":"address"},
		{"indexed":false,"name":"payer","type":"address"},
		{"indexed":false,"name":"quantityMinted","type":"uint256"},
		{"indexed":false,"name":"unitMintPrice","type":"uint256"},
		{"indexed":false,"name":"feeBps","type":"uint256"},
		{"indexed":false,"name":"dropStageIndex","type":"uint256"}
	]}
]`

// Unpack targets. Field names follow abi.ToCamelCase of the argument names.

type seaportSpentItem struct {
	ItemType   uint8
	Token      common.Address
	Identifier *big.Int
	Amount     *big.Int
}

type seaportReceivedItem struct {
	ItemType   uint8
	Token      common.Address
	Identifier *big.Int
	Amount     *big.Int
	Recipient  common.Address
}

type orderFulfilledLog struct {
	OrderHash     [32]byte
	Offerer       common.Address
	Zone          common.Address
	Recipient     common.Address
	Offer         []seaportSpentItem
	Consideration []seaportReceivedItem
}

type punkBoughtLog struct {
	PunkIndex   *big.Int
	Value       *big.Int
	FromAddress common.Address
	ToAddress   common.Address
}

type reserveAuctionCreatedLog struct {
	Seller            common.Address
	NftContract       common.Address
	TokenId           *big.Int //nolint:revive
	Duration          *big.Int
	ExtensionDuration *big.Int
	ReservePrice      *big.Int
	AuctionId         *big.Int //nolint:revive
}

type reserveAuctionFinalizedLog struct {
	AuctionId   *big.Int //nolint:revive
	Seller      common.Address
	Bidder      common.Address
	ProtocolFee *big.Int
	CreatorFee  *big.Int
	SellerRev   *big.Int
}

// foundationSettlementLog covers BuyPriceAccepted, OfferAccepted and PrivateSaleFinalized
type foundationSettlementLog struct {
	NftContract common.Address
	TokenId     *big.Int //nolint:revive
	Seller      common.Address
	Buyer       common.Address
	ProtocolFee *big.Int
	CreatorFee  *big.Int
	SellerRev   *big.Int
	Deadline    *big.Int
}

// superRareSettlementLog covers Sold, AcceptOffer and AuctionSettled of the bazaar
type superRareSettlementLog struct {
	OriginContract  common.Address
	ContractAddress common.Address
	Buyer           common.Address
	Bidder          common.Address
	Seller          common.Address
	CurrencyAddress common.Address
	Amount          *big.Int
	TokenId         *big.Int //nolint:revive
	SplitAddresses  []common.Address
	SplitRatios     []uint8
}

// superRareLegacyLog covers the legacy Sold and AcceptBid
type superRareLegacyLog struct {
	Buyer   common.Address
	Bidder  common.Address
	Seller  common.Address
	Amount  *big.Int
	TokenId *big.Int //nolint:revive
}

type seaDropMintLog struct {
	NftContract    common.Address
	Minter         common.Address
	FeeRecipient   common.Address
	Payer          common.Address
	QuantityMinted *big.Int
	UnitMintPrice  *big.Int
	FeeBps         *big.Int
	DropStageIndex *big.Int
}

package types

// Event types for the datafeed module
const (
	EventTypeBeaconUpdated     = "datafeed_beacon_updated"
	EventTypeBeaconSetUpdated  = "datafeed_beacon_set_updated"
	EventTypeDapiNameSet       = "datafeed_dapi_name_set"
	EventTypeOevBeneficiarySet = "datafeed_oev_beneficiary_set"
	EventTypeOevRead           = "datafeed_oev_read"
	EventTypeProxyDeployed     = "datafeed_proxy_deployed"
)

// Event attribute keys for the datafeed module
const (
	AttributeKeyDataFeedID   = "data_feed_id"
	AttributeKeyBeaconID     = "beacon_id"
	AttributeKeyBeaconSetID  = "beacon_set_id"
	AttributeKeyAirnode      = "airnode"
	AttributeKeyTemplateID   = "template_id"
	AttributeKeyValue        = "value"
	AttributeKeyTimestamp    = "timestamp"
	AttributeKeyDapiName     = "dapi_name"
	AttributeKeyDapiNameHash = "dapi_name_hash"
	AttributeKeySender       = "sender"
	AttributeKeyBeneficiary  = "beneficiary"
	AttributeKeyUpdateID     = "update_id"
	AttributeKeyBid          = "bid"
	AttributeKeyProxy        = "proxy"
	AttributeKeyProxyKind    = "proxy_kind"
)

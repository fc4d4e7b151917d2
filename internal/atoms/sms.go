package atoms

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// IncomingSms describes received short messages sharing the same dimensions.
// Hash is computed by the store on insertion and identifies records that may
// be merged when the collection is full.
type IncomingSms struct {
	SmsFormat        int32  `json:"sms_format" yaml:"sms_format"`
	SmsTech          int32  `json:"sms_tech" yaml:"sms_tech"`
	Rat              int32  `json:"rat" yaml:"rat"`
	SmsType          int32  `json:"sms_type" yaml:"sms_type"`
	TotalParts       int32  `json:"total_parts" yaml:"total_parts"`
	ReceivedParts    int32  `json:"received_parts" yaml:"received_parts"`
	Blocked          bool   `json:"blocked" yaml:"blocked"`
	Error            int32  `json:"error" yaml:"error"`
	IsRoaming        bool   `json:"is_roaming" yaml:"is_roaming"`
	SimSlotIndex     int32  `json:"sim_slot_index" yaml:"sim_slot_index"`
	IsMultiSim       bool   `json:"is_multi_sim" yaml:"is_multi_sim"`
	IsEsim           bool   `json:"is_esim" yaml:"is_esim"`
	CarrierID        int32  `json:"carrier_id" yaml:"carrier_id"`
	MessageID        int64  `json:"message_id" yaml:"message_id"`
	Count            int32  `json:"count" yaml:"count"`
	IsManagedProfile bool   `json:"is_managed_profile" yaml:"is_managed_profile"`
	Hash             uint64 `json:"hash" yaml:"-"`
}

// OutgoingSms describes sent short messages sharing the same dimensions.
type OutgoingSms struct {
	SmsFormat        int32  `json:"sms_format" yaml:"sms_format"`
	SmsTech          int32  `json:"sms_tech" yaml:"sms_tech"`
	Rat              int32  `json:"rat" yaml:"rat"`
	SendResult       int32  `json:"send_result" yaml:"send_result"`
	ErrorCode        int32  `json:"error_code" yaml:"error_code"`
	IsRoaming        bool   `json:"is_roaming" yaml:"is_roaming"`
	IsFromDefaultApp bool   `json:"is_from_default_app" yaml:"is_from_default_app"`
	SimSlotIndex     int32  `json:"sim_slot_index" yaml:"sim_slot_index"`
	IsMultiSim       bool   `json:"is_multi_sim" yaml:"is_multi_sim"`
	IsEsim           bool   `json:"is_esim" yaml:"is_esim"`
	CarrierID        int32  `json:"carrier_id" yaml:"carrier_id"`
	MessageID        int64  `json:"message_id" yaml:"message_id"`
	RetryID          int32  `json:"retry_id" yaml:"retry_id"`
	IntervalMillis   int64  `json:"interval_millis" yaml:"interval_millis"`
	Count            int32  `json:"count" yaml:"count"`
	SendErrorCode    int32  `json:"send_error_code" yaml:"send_error_code"`
	NetworkErrorCode int32  `json:"network_error_code" yaml:"network_error_code"`
	IsManagedProfile bool   `json:"is_managed_profile" yaml:"is_managed_profile"`
	Hash             uint64 `json:"hash" yaml:"-"`
}

// OutgoingShortCodeSms counts messages sent to premium short codes.
type OutgoingShortCodeSms struct {
	Category          int32 `json:"category" yaml:"category"`
	XMLVersion        int32 `json:"xml_version" yaml:"xml_version"`
	ShortCodeSmsCount int32 `json:"short_code_sms_count" yaml:"short_code_sms_count"`
}

// ShortCodeSmsKey is the dimension tuple of an OutgoingShortCodeSms.
type ShortCodeSmsKey struct {
	Category   int32
	XMLVersion int32
}

func (s *OutgoingShortCodeSms) Key() ShortCodeSmsKey {
	return ShortCodeSmsKey{Category: s.Category, XMLVersion: s.XMLVersion}
}

// dimensionHasher writes fixed-width field encodings into an xxhash digest.
type dimensionHasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func newDimensionHasher(domain string) *dimensionHasher {
	h := &dimensionHasher{d: xxhash.New()}
	_, _ = h.d.WriteString(domain)
	_, _ = h.d.Write([]byte{0x00})
	return h
}

func (h *dimensionHasher) int32(v int32) *dimensionHasher {
	binary.LittleEndian.PutUint32(h.buf[:4], uint32(v))
	_, _ = h.d.Write(h.buf[:4])
	return h
}

func (h *dimensionHasher) bool(v bool) *dimensionHasher {
	if v {
		_, _ = h.d.Write([]byte{1})
	} else {
		_, _ = h.d.Write([]byte{0})
	}
	return h
}

func (h *dimensionHasher) sum() uint64 {
	return h.d.Sum64()
}

// DedupHash hashes every dimension field. Message id and count are measures
// and do not participate.
func (s *IncomingSms) DedupHash() uint64 {
	return newDimensionHasher("incoming_sms/v1").
		int32(s.SmsFormat).
		int32(s.SmsTech).
		int32(s.Rat).
		int32(s.SmsType).
		int32(s.TotalParts).
		int32(s.ReceivedParts).
		bool(s.Blocked).
		int32(s.Error).
		bool(s.IsRoaming).
		int32(s.SimSlotIndex).
		bool(s.IsMultiSim).
		bool(s.IsEsim).
		int32(s.CarrierID).
		bool(s.IsManagedProfile).
		sum()
}

// DedupHash hashes every dimension field. Message id, retry id, interval and
// count are excluded.
func (s *OutgoingSms) DedupHash() uint64 {
	return newDimensionHasher("outgoing_sms/v1").
		int32(s.SmsFormat).
		int32(s.SmsTech).
		int32(s.Rat).
		int32(s.SendResult).
		int32(s.ErrorCode).
		bool(s.IsRoaming).
		bool(s.IsFromDefaultApp).
		int32(s.SimSlotIndex).
		bool(s.IsMultiSim).
		bool(s.IsEsim).
		int32(s.CarrierID).
		int32(s.SendErrorCode).
		int32(s.NetworkErrorCode).
		bool(s.IsManagedProfile).
		sum()
}

// MergeIncomingSms folds src into dst.
func MergeIncomingSms(dst, src *IncomingSms) {
	dst.Count += src.Count
}

// MergeOutgoingSms folds src into dst. The send interval becomes the
// count-weighted average of both records.
func MergeOutgoingSms(dst, src *OutgoingSms) {
	total := int64(dst.Count) + int64(src.Count)
	if total > 0 {
		dst.IntervalMillis = (dst.IntervalMillis*int64(dst.Count) + src.IntervalMillis*int64(src.Count)) / total
	}
	dst.Count += src.Count
}

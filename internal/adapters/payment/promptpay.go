// Package payment builds PromptPay payloads for payment QR codes.
//
// The payload follows the EMVCo merchant-presented QR format with the
// Thai PromptPay application ID. Scanning apps read the target account
// and the pre-filled amount from the encoded fields.
package payment

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadTarget = errors.New("promptpay target must be a phone number, national id, or e-wallet id")

// EMVCo field IDs used in the payload.
const (
	idPayloadFormat   = "00"
	idPOIMethod       = "01"
	idMerchantInfo    = "29"
	idCurrency        = "53"
	idAmount          = "54"
	idCountryCode     = "58"
	idCRC             = "63"
	promptPayGUID     = "A000000677010111"
	poiMethodStatic   = "11"
	poiMethodDynamic  = "12"
	currencyTHB       = "764"
	countryTH         = "TH"
	targetTypePhone   = "01"
	targetTypeNatID   = "02"
	targetTypeEWallet = "03"
)

// BuildPayload encodes a PromptPay payload for the given target.
//
// target is a Thai phone number (10 digits), a national id (13 digits),
// or an e-wallet id (15 digits). amountSatang is the amount in satang;
// zero produces a static payload with no amount field.
// PRE: amountSatang >= 0
// POST: Returns the full payload string ending in its CRC field
func BuildPayload(target string, amountSatang int64) (string, error) {
	targetType, formatted, err := normalizeTarget(target)
	if err != nil {
		return "", err
	}

	poi := poiMethodStatic
	if amountSatang > 0 {
		poi = poiMethodDynamic
	}

	var b strings.Builder
	writeField(&b, idPayloadFormat, "01")
	writeField(&b, idPOIMethod, poi)

	var merchant strings.Builder
	writeField(&merchant, "00", promptPayGUID)
	writeField(&merchant, targetType, formatted)
	writeField(&b, idMerchantInfo, merchant.String())

	writeField(&b, idCountryCode, countryTH)
	writeField(&b, idCurrency, currencyTHB)
	if amountSatang > 0 {
		writeField(&b, idAmount, fmt.Sprintf("%d.%02d", amountSatang/100, amountSatang%100))
	}

	payload := b.String() + idCRC + "04"
	return payload + fmt.Sprintf("%04X", crc16(payload)), nil
}

func writeField(b *strings.Builder, id, value string) {
	fmt.Fprintf(b, "%s%02d%s", id, len(value), value)
}

// normalizeTarget classifies the target by digit count and rewrites
// phone numbers to the international 0066 form PromptPay expects.
func normalizeTarget(target string) (targetType, formatted string, err error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, target)

	switch len(digits) {
	case 10:
		return targetTypePhone, "0066" + strings.TrimPrefix(digits, "0"), nil
	case 13:
		return targetTypeNatID, digits, nil
	case 15:
		return targetTypeEWallet, digits, nil
	default:
		return "", "", ErrBadTarget
	}
}

// crc16 computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF) as
// required by the EMVCo QR specification.
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

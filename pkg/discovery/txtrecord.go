package discovery

import "strings"

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// StringsToTXTRecords parses raw "key=value" mDNS TXT strings into a map.
// Entries without "=" are ignored (boolean TXT keys are not used by eSCL).
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(strs))
	for _, s := range strs {
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			continue
		}
		txt[key] = value
	}
	return txt
}

// DecodeScannerTXT parses TXT records advertised alongside an eSCL service.
func DecodeScannerTXT(txt TXTRecordMap) ScannerService {
	svc := ScannerService{
		UUID:         txt[TXTKeyUUID],
		ResourcePath: strings.Trim(txt[TXTKeyResourcePath], "/"),
		Model:        txt[TXTKeyModel],
		Note:         txt[TXTKeyNote],
	}
	if pdl, ok := txt[TXTKeyPDL]; ok && pdl != "" {
		svc.PDL = splitAndTrim(pdl, ",")
	}
	return svc
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

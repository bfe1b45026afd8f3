package quotetax

import "strings"

// GST state codes as printed in the first two digits of a GSTIN.
var stateNames = map[int]string{
	1:  "Jammu and Kashmir",
	2:  "Himachal Pradesh",
	3:  "Punjab",
	4:  "Chandigarh",
	5:  "Uttarakhand",
	6:  "Haryana",
	7:  "Delhi",
	8:  "Rajasthan",
	9:  "Uttar Pradesh",
	10: "Bihar",
	11: "Sikkim",
	12: "Arunachal Pradesh",
	13: "Nagaland",
	14: "Manipur",
	15: "Mizoram",
	16: "Tripura",
	17: "Meghalaya",
	18: "Assam",
	19: "West Bengal",
	20: "Jharkhand",
	21: "Odisha",
	22: "Chhattisgarh",
	23: "Madhya Pradesh",
	24: "Gujarat",
	25: "Daman and Diu",
	26: "Dadra and Nagar Haveli and Daman and Diu",
	27: "Maharashtra",
	28: "Andhra Pradesh (Old)",
	29: "Karnataka",
	30: "Goa",
	31: "Lakshadweep",
	32: "Kerala",
	33: "Tamil Nadu",
	34: "Puducherry",
	35: "Andaman and Nicobar Islands",
	36: "Telangana",
	37: "Andhra Pradesh",
	38: "Ladakh",
	97: "Other Territory",
	99: "Centre Jurisdiction",
}

var stateCodes = func() map[string]int {
	out := make(map[string]int, len(stateNames))
	for code, name := range stateNames {
		out[strings.ToLower(name)] = code
	}
	return out
}()

// StateName returns the state for a GST state code.
func StateName(code int) (string, bool) {
	name, ok := stateNames[code]
	return name, ok
}

// StateCode looks a state up by name, ignoring case and surrounding spaces.
func StateCode(name string) (int, bool) {
	code, ok := stateCodes[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// StateFromGSTIN returns the registered state of a valid GSTIN.
func StateFromGSTIN(gstin string) (string, bool) {
	if !ValidGSTIN(gstin) {
		return "", false
	}
	code, _ := StateCodeFromGSTIN(gstin)
	return StateName(code)
}

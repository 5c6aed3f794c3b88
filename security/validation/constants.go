package validation

const (
	MaxShortTextLength = 128
	MaxLongTextLength  = 5120
	MaxMessageLength   = 256
	MaxSignatureLength = 1024

	DefaultRequestBodyLimit = 128 * 1024 // 128 KB

	// Short text fields:
	AddressField = "address"
	HashField    = "hash"
	DecField     = "star.dec"
	RaField      = "star.ra"

	// Long text fields:
	StoryField     = "star.story"
	MessageField   = "message"
	SignatureField = "signature"

	ClientIPKey = "clientIP"
)

var InjectionPatterns = []string{
	"${{", "{{", "}}", "${", "#{", "{%", "%}", "{{{", // templates/SSTI
	"%0a", "%0d", "%0a%0d", "%00", "%27", "%22", "%3c", "%3e", // encoded attacks (decode first)
	"${jndi:", "ldap://", "ldaps://", // JNDI/ldap
	"eval(", "exec(", "system(", "popen(", // dangerous funcs
}

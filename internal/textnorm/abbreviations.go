package textnorm

// abbreviations maps technical acronyms common in procurement notices to
// their spelled-out form. Expansions are stored already lowercased and
// without diacritics so Normalize stays idempotent.
var abbreviations = map[string]string{
	"ti":    "tecnologia da informacao",
	"tic":   "tecnologia da informacao e comunicacao",
	"rh":    "recursos humanos",
	"gps":   "sistema de posicionamento global",
	"cpu":   "unidade central de processamento",
	"hd":    "disco rigido",
	"ssd":   "solid state drive",
	"ram":   "memoria de acesso aleatorio",
	"led":   "diodo emissor de luz",
	"lcd":   "display de cristal liquido",
	"usb":   "universal serial bus",
	"wifi":  "wireless fidelity",
	"lan":   "rede local",
	"wan":   "rede de area ampla",
	"erp":   "enterprise resource planning",
	"crm":   "customer relationship management",
	"api":   "interface de programacao de aplicacoes",
	"sql":   "structured query language",
	"pdf":   "portable document format",
	"xml":   "extensible markup language",
	"html":  "hypertext markup language",
	"http":  "hypertext transfer protocol",
	"https": "hypertext transfer protocol secure",
	"ftp":   "file transfer protocol",
	"smtp":  "simple mail transfer protocol",
	"dns":   "domain name system",
	"dhcp":  "dynamic host configuration protocol",
	"voip":  "voice over internet protocol",
	"pbx":   "private branch exchange",
	"cftv":  "circuito fechado de televisao",
	"dvr":   "digital video recorder",
	"nvr":   "network video recorder",
	"ip":    "internet protocol",
	"tcp":   "transmission control protocol",
	"udp":   "user datagram protocol",
}

package textnorm

// stopwords is the Portuguese stopword set, stored without diacritics
// because filtering runs after diacritic stripping. Tokens shorter than
// three characters are dropped by the length filter regardless, but the
// full set is kept so the table matches the published vocabulary.
var stopwords = map[string]struct{}{}

func init() {
	words := []string{
		"a", "ao", "aos", "aquela", "aquelas", "aquele", "aqueles", "aquilo",
		"as", "ate", "com", "como", "da", "das", "de", "dela", "delas",
		"dele", "deles", "do", "dos", "e", "ela", "elas", "ele", "eles",
		"em", "entre", "era", "eram", "essa", "essas", "esse", "esses",
		"esta", "estamos", "estao", "estar", "estas", "estava", "estavam",
		"este", "esteja", "estejam", "estejamos", "estes", "esteve",
		"estive", "estivemos", "estiver", "estivera", "estiveram",
		"estiverem", "estivermos", "estivesse", "estivessem",
		"estiveramos", "estivessemos", "estou", "eu", "foi", "fomos",
		"for", "fora", "foram", "forem", "formos", "fosse", "fossem",
		"fui", "foramos", "fossemos", "haja", "hajam", "hajamos", "hao",
		"havemos", "havia", "hei", "houve", "houvemos", "houver",
		"houvera", "houveram", "houverei", "houverem", "houveremos",
		"houveria", "houveriam", "houvermos", "houverao", "houvesse",
		"houvessem", "houveramos", "houvessemos", "ha", "isso", "isto",
		"ja", "lhe", "lhes", "mais", "mas", "me", "mesmo", "meu", "meus",
		"minha", "minhas", "muito", "na", "nas", "nem", "no", "nos",
		"nossa", "nossas", "nosso", "nossos", "nao", "o", "os", "ou",
		"para", "pela", "pelas", "pelo", "pelos", "por", "qual", "quando",
		"que", "quem", "sao", "se", "seja", "sejam", "sejamos", "sem",
		"ser", "sera", "serao", "seu", "seus", "so", "sua", "suas",
		"tambem", "te", "tem", "temos", "tenha", "tenham", "tenhamos",
		"tenho", "ter", "teu", "teus", "teve", "tinha", "tinham", "tive",
		"tivemos", "tiver", "tivera", "tiveram", "tiverem", "tivermos",
		"tivesse", "tivessem", "tiveramos", "tivessemos", "tu", "tua",
		"tuas", "tinhamos", "um", "uma", "voce", "voces", "vos",
	}
	for _, w := range words {
		stopwords[w] = struct{}{}
	}
}

package nlp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	numberRe    = regexp.MustCompile(`\b\d+\b`)
	rtRe        = regexp.MustCompile(`\brt\s*\.?\s*(\d{1,3})\b`)
	rwRe        = regexp.MustCompile(`\brw\s*\.?\s*(\d{1,3})\b`)
	streetRe    = regexp.MustCompile(`\b(?:jalan|jln|jl)\.?\s+([a-z][a-z0-9]*)`)
	nextWordRe  = regexp.MustCompile(`^\s+([a-z][a-z0-9]*)`)
)

// street names that are only meaningful together with the following word
var streetQualifiers = map[string]bool{"raya": true, "besar": true, "utama": true, "lingkar": true}

var stopWords = toSet(
	"yang", "dan", "di", "ke", "dari", "ini", "itu", "dengan", "untuk", "pada",
	"adalah", "sebagai", "dalam", "tidak", "tak", "akan", "juga", "atau", "ada",
	"mereka", "sudah", "saya", "aku", "kami", "kita", "anda", "telah", "oleh",
	"karena", "jadi", "bisa", "sangat", "lebih", "sejak", "hingga", "sampai",
	"masih", "agar", "supaya", "namun", "tetapi", "tapi", "bagi", "para", "nya",
	"pun", "lagi", "belum", "harus", "setelah", "sekitar", "dapat", "tersebut",
	"kepada", "tentang", "seperti", "ketika", "saat", "yaitu", "hanya", "banyak",
	"semua", "sama", "baru", "sedang", "lalu", "kalau", "jika", "apa", "bagaimana",
	"kenapa", "mengapa", "mohon", "tolong", "sekali", "sih", "dong", "deh", "ya",
	"kok", "nih", "tuh", "si", "sang", "se", "per", "sana", "sini", "situ",
	"terus", "udah", "gak", "nggak", "enggak", "ga", "kah", "lah", "pak",
	"bu", "ibu", "bapak", "warga", "mas", "mbak",
)

// domainTerms are always treated as keywords regardless of frequency.
var domainTerms = toSet(
	// infrastructure
	"jalan", "rusak", "berlubang", "lubang", "aspal", "jembatan", "retak", "ambles",
	"drainase", "selokan", "got", "gorong", "trotoar", "lampu", "listrik", "padam",
	"air", "pdam", "pipa", "bocor", "macet", "lintas", "parkir", "halte",
	// environment
	"banjir", "genangan", "sampah", "limbah", "polusi", "asap", "bau", "pohon",
	"tumbang", "longsor", "sungai", "kali", "tercemar", "kebakaran", "hutan",
	// safety
	"kecelakaan", "pencurian", "maling", "begal", "kriminal", "tawuran", "rawan",
	"gelap", "bahaya",
	// health
	"puskesmas", "demam", "berdarah", "dbd", "nyamuk", "diare", "wabah", "obat",
	"kesehatan", "gizi",
	// education
	"sekolah", "guru", "murid", "siswa", "kelas", "pendidikan",
	// governance / social
	"pungli", "korupsi", "pelayanan", "ktp", "izin", "bansos", "bantuan",
	"kemiskinan", "pengemis", "gelandangan", "lansia",
	// english equivalents
	"road", "pothole", "bridge", "flood", "flooding", "garbage", "trash", "waste",
	"electricity", "water", "leak", "traffic", "fire", "pollution", "accident",
	"theft", "school", "hospital", "clinic",
)

// Document is the lexical analysis of one report description.
type Document struct {
	Tokens   []string            // normalized tokens, stop words removed, in order
	Keywords map[string]struct{} // domain terms plus repeated long words
	Entities map[string]struct{} // numbers, street names and RT/RW codes
	TermFreq map[string]float64
	Length   int // rune length of the normalized text
}

// Empty reports whether nothing survived normalization.
func (d Document) Empty() bool {
	return len(d.Tokens) == 0
}

// Analyze normalizes text and extracts keywords and entities from it.
func Analyze(text string) Document {
	tokens := Tokens(text)
	doc := Document{
		Tokens:   tokens,
		Keywords: keywords(tokens),
		Entities: Entities(text),
		TermFreq: make(map[string]float64, len(tokens)),
	}
	for _, tok := range tokens {
		doc.TermFreq[tok]++
	}
	doc.Length = utf8.RuneCountInString(strings.Join(tokens, " "))
	return doc
}

// Normalize lowercases text, strips punctuation and removes stop words.
func Normalize(text string) string {
	return strings.Join(Tokens(text), " ")
}

func Tokens(text string) []string {
	cleaned := punctuation.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func keywords(tokens []string) map[string]struct{} {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	out := make(map[string]struct{})
	for tok, n := range counts {
		if _, ok := domainTerms[tok]; ok {
			out[tok] = struct{}{}
			continue
		}
		if n >= 2 && utf8.RuneCountInString(tok) > 3 {
			out[tok] = struct{}{}
		}
	}
	return out
}

// Keywords returns the keyword set of text.
func Keywords(text string) map[string]struct{} {
	return keywords(Tokens(text))
}

// Entities extracts numbers ("num:12"), street names ("street:sudirman") and
// administrative neighbourhood codes ("rt:3", "rw:5").
func Entities(text string) map[string]struct{} {
	lower := strings.ToLower(text)
	out := make(map[string]struct{})

	for _, m := range numberRe.FindAllString(lower, -1) {
		out["num:"+trimNumber(m)] = struct{}{}
	}
	for _, m := range rtRe.FindAllStringSubmatch(lower, -1) {
		out["rt:"+trimNumber(m[1])] = struct{}{}
	}
	for _, m := range rwRe.FindAllStringSubmatch(lower, -1) {
		out["rw:"+trimNumber(m[1])] = struct{}{}
	}
	for _, loc := range streetRe.FindAllStringSubmatchIndex(lower, -1) {
		name := lower[loc[2]:loc[3]]
		if _, common := domainTerms[name]; common {
			continue
		}
		if _, stop := stopWords[name]; stop {
			continue
		}
		if streetQualifiers[name] {
			if next := nextWordRe.FindStringSubmatch(lower[loc[1]:]); next != nil {
				name += " " + next[1]
			}
		}
		out["street:"+name] = struct{}{}
	}
	return out
}

// TopKeywords returns up to n keywords ranked by how many texts mention them.
func TopKeywords(texts []string, n int) []string {
	counts := make(map[string]int)
	for _, text := range texts {
		for kw := range Keywords(text) {
			counts[kw]++
		}
	}
	ranked := make([]string, 0, len(counts))
	for kw := range counts {
		ranked = append(ranked, kw)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func trimNumber(s string) string {
	if n, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(n)
	}
	return s
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

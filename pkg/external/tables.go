package external

import (
	"sort"
	"strings"

	"github.com/protein-atlas-server/internal/domain"
)

// Static tables of well-known entries. Adapters consult these before any
// network call so common demo queries stay fast and keep working when the
// live services are unreachable. This is a reliability fallback, not an
// optimization.

// wellKnownAccessions maps gene symbols to UniProt accessions.
var wellKnownAccessions = map[string]string{
	"TP53":  "P04637",
	"BRCA1": "P38398",
	"BRCA2": "P51587",
	"EGFR":  "P00533",
	"INS":   "P01308",
	"APP":   "P05067",
	"APOE":  "P02649",
	"TNF":   "P01375",
	"IL6":   "P05231",
	"ALB":   "P02768",
	"KRAS":  "P01116",
	"PTEN":  "P60484",
	"VEGFA": "P15692",
	"SOD1":  "P00441",
	"CFTR":  "P13569",
}

// wellKnownGeneIDs maps gene symbols to NCBI gene IDs.
var wellKnownGeneIDs = map[string]string{
	"TP53":  "7157",
	"BRCA1": "672",
	"BRCA2": "675",
	"EGFR":  "1956",
	"INS":   "3630",
	"APP":   "351",
	"APOE":  "348",
	"TNF":   "7124",
	"IL6":   "3569",
	"ALB":   "213",
	"KRAS":  "3845",
	"PTEN":  "5728",
	"VEGFA": "7422",
	"SOD1":  "6647",
	"CFTR":  "1080",
}

// wellKnownNames maps gene symbols to recommended protein names.
var wellKnownNames = map[string]string{
	"TP53":  "Cellular tumor antigen p53",
	"BRCA1": "Breast cancer type 1 susceptibility protein",
	"BRCA2": "Breast cancer type 2 susceptibility protein",
	"EGFR":  "Epidermal growth factor receptor",
	"INS":   "Insulin",
	"APP":   "Amyloid-beta precursor protein",
	"APOE":  "Apolipoprotein E",
	"TNF":   "Tumor necrosis factor",
	"IL6":   "Interleukin-6",
	"ALB":   "Serum albumin",
	"KRAS":  "GTPase KRas",
	"PTEN":  "Phosphatase and tensin homolog",
	"VEGFA": "Vascular endothelial growth factor A",
	"SOD1":  "Superoxide dismutase [Cu-Zn]",
	"CFTR":  "Cystic fibrosis transmembrane conductance regulator",
}

// wellKnownDescriptions maps gene symbols to function descriptions.
var wellKnownDescriptions = map[string]string{
	"TP53":  "Tumor protein p53 is a tumor suppressor protein that regulates cell cycle and functions as a tumor suppressor. It plays a crucial role in preventing cancer formation.",
	"BRCA1": "Breast cancer type 1 susceptibility protein is involved in DNA repair, cell cycle checkpoint control, and maintenance of genomic stability.",
	"BRCA2": "Breast cancer type 2 susceptibility protein is involved in the repair of chromosomal damage with an important role in the error-free repair of DNA double strand breaks.",
	"EGFR":  "Epidermal growth factor receptor is a transmembrane protein that is activated by binding of its specific ligands. It plays a crucial role in cell signaling pathways.",
	"INS":   "Insulin is a peptide hormone produced by beta cells of the pancreatic islets. It regulates the metabolism of carbohydrates, fats and protein.",
	"APP":   "Amyloid precursor protein is an integral membrane protein expressed in many tissues and concentrated in the synapses of neurons. It is cleaved by secretases to form a number of peptides.",
	"APOE":  "Apolipoprotein E is a class of apolipoprotein found in the chylomicron and Intermediate-density lipoprotein that is essential for the normal catabolism of triglyceride-rich lipoprotein constituents.",
	"TNF":   "Tumor necrosis factor is a cytokine that is involved in systemic inflammation and is one of the cytokines that regulate the acute phase reaction.",
	"IL6":   "Interleukin 6 is an interleukin that acts as both a pro-inflammatory cytokine and an anti-inflammatory myokine.",
	"ALB":   "Albumin is a family of globular proteins, the most common of which are the serum albumins. They are commonly found in blood plasma.",
	"KRAS":  "KRAS is a protein that in humans is encoded by the KRAS gene. It is involved in regulating cell division as part of the RAS/MAPK pathway.",
	"PTEN":  "Phosphatase and tensin homolog is a protein that, in humans, is encoded by the PTEN gene. It acts as a tumor suppressor gene.",
	"VEGFA": "Vascular endothelial growth factor A is a protein that in humans is encoded by the VEGFA gene. It stimulates angiogenesis, vasculogenesis and endothelial cell growth.",
	"SOD1":  "Superoxide dismutase 1 is an enzyme that in humans is encoded by the SOD1 gene. It converts harmful superoxide radicals to hydrogen peroxide and oxygen.",
	"CFTR":  "Cystic fibrosis transmembrane conductance regulator is a membrane protein and chloride channel in vertebrates that is encoded by the CFTR gene.",
}

// wellKnownDiseases maps gene symbols to canned disease associations.
var wellKnownDiseases = map[string][]domain.DiseaseAssociation{
	"TP53": {
		{Name: "Li-Fraumeni syndrome", Description: "A rare autosomal dominant syndrome predisposing to multiple forms of cancer.", Score: 0.9},
		{Name: "Colorectal cancer", Description: "A common malignancy associated with genetic and environmental risk factors.", Score: 0.8},
		{Name: "Breast cancer", Description: "A common malignancy in women.", Score: 0.7},
	},
	"BRCA1": {
		{Name: "Hereditary breast and ovarian cancer syndrome", Description: "An autosomal dominant syndrome associated with increased risk of breast and ovarian cancer.", Score: 0.9},
		{Name: "Breast cancer", Description: "A common malignancy in women.", Score: 0.9},
		{Name: "Ovarian cancer", Description: "A malignancy of the ovaries.", Score: 0.8},
	},
	"BRCA2": {
		{Name: "Hereditary breast and ovarian cancer syndrome", Description: "An autosomal dominant syndrome associated with increased risk of breast and ovarian cancer.", Score: 0.9},
		{Name: "Pancreatic cancer", Description: "A malignant neoplasm of the pancreas.", Score: 0.8},
		{Name: "Fanconi anemia", Description: "A rare genetic disorder affecting bone marrow.", Score: 0.7},
	},
	"EGFR": {
		{Name: "Non-small cell lung cancer", Description: "A type of lung cancer that is the most common form of lung cancer.", Score: 0.9},
		{Name: "Glioblastoma", Description: "A highly aggressive brain tumor.", Score: 0.8},
		{Name: "Colorectal cancer", Description: "A common malignancy associated with genetic and environmental risk factors.", Score: 0.7},
	},
	"INS": {
		{Name: "Diabetes mellitus", Description: "A metabolic disorder characterized by hyperglycemia resulting from defects in insulin secretion, insulin action, or both.", Score: 0.9},
		{Name: "Hyperinsulinemic hypoglycemia", Description: "A condition characterized by abnormally high levels of insulin in the blood, causing hypoglycemia.", Score: 0.8},
	},
	"APP": {
		{Name: "Alzheimer's disease", Description: "A progressive neurodegenerative disorder characterized by memory loss and cognitive decline.", Score: 0.9},
		{Name: "Cerebral amyloid angiopathy", Description: "A condition in which amyloid deposits form in the walls of blood vessels of the brain.", Score: 0.8},
	},
	"APOE": {
		{Name: "Alzheimer's disease", Description: "A progressive neurodegenerative disorder characterized by memory loss and cognitive decline.", Score: 0.9},
		{Name: "Hyperlipidemia", Description: "Abnormally elevated levels of lipids in the blood.", Score: 0.8},
		{Name: "Cardiovascular disease", Description: "Diseases affecting the heart and blood vessels.", Score: 0.7},
	},
}

// wellKnownDrugs maps gene symbols to canned drug associations.
var wellKnownDrugs = map[string][]domain.DrugAssociation{
	"TP53": {
		{Name: "APR-246", Type: "small molecule", Mechanism: "p53 reactivator", Groups: []string{"investigational"}},
		{Name: "COTI-2", Type: "small molecule", Mechanism: "p53 reactivator", Groups: []string{"experimental"}},
	},
	"BRCA1": {
		{Name: "Olaparib", Type: "small molecule", Mechanism: "PARP inhibitor", Groups: []string{"approved"}},
		{Name: "Talazoparib", Type: "small molecule", Mechanism: "PARP inhibitor", Groups: []string{"approved"}},
	},
	"BRCA2": {
		{Name: "Olaparib", Type: "small molecule", Mechanism: "PARP inhibitor", Groups: []string{"approved"}},
		{Name: "Rucaparib", Type: "small molecule", Mechanism: "PARP inhibitor", Groups: []string{"approved"}},
	},
	"EGFR": {
		{Name: "Gefitinib", Type: "small molecule", Mechanism: "EGFR inhibitor", Groups: []string{"approved"}},
		{Name: "Erlotinib", Type: "small molecule", Mechanism: "EGFR inhibitor", Groups: []string{"approved"}},
		{Name: "Cetuximab", Type: "antibody", Mechanism: "EGFR inhibitor", Groups: []string{"approved"}},
	},
	"INS": {
		{Name: "Insulin glargine", Type: "protein", Mechanism: "Insulin receptor agonist", Groups: []string{"approved"}},
		{Name: "Insulin lispro", Type: "protein", Mechanism: "Insulin receptor agonist", Groups: []string{"approved"}},
	},
	"APP": {
		{Name: "Aducanumab", Type: "antibody", Mechanism: "Amyloid beta-directed antibody", Groups: []string{"approved"}},
		{Name: "Lecanemab", Type: "antibody", Mechanism: "Amyloid beta-directed antibody", Groups: []string{"approved"}},
	},
	"APOE": {
		{Name: "Statins", Type: "small molecule", Mechanism: "HMG-CoA reductase inhibitor", Groups: []string{"approved"}},
		{Name: "Lomitapide", Type: "small molecule", Mechanism: "Microsomal triglyceride transfer protein inhibitor", Groups: []string{"approved"}},
	},
}

// wellKnownStructures maps gene symbols to representative PDB entry IDs.
var wellKnownStructures = map[string][]string{
	"TP53":  {"1TUP", "2OCJ"},
	"BRCA1": {"1JM7"},
	"BRCA2": {"1MJE"},
	"EGFR":  {"1IVO", "2ITY"},
	"INS":   {"4INS"},
	"APP":   {"1AAP"},
	"APOE":  {"1LPE"},
	"TNF":   {"1TNF"},
	"IL6":   {"1ALU"},
	"ALB":   {"1AO6"},
	"KRAS":  {"4OBE"},
	"PTEN":  {"1D5R"},
	"VEGFA": {"2VPF"},
	"SOD1":  {"2C9V"},
	"CFTR":  {"5UAK"},
}

// wellKnownPartners maps gene symbols to canned interaction partner symbols,
// highest confidence first.
var wellKnownPartners = map[string][]string{
	"TP53":  {"MDM2", "EP300", "ATM"},
	"BRCA1": {"BARD1", "RAD51", "TP53"},
	"BRCA2": {"RAD51", "PALB2"},
	"EGFR":  {"GRB2", "SHC1", "ERBB2"},
	"INS":   {"INSR", "IGF1R"},
	"APP":   {"APBB1", "BACE1"},
}

// wellKnownIdentity builds a full canned identity block for a symbol present
// in the static tables, or nil if the symbol is unknown.
func wellKnownIdentity(symbol, dataSource string) *domain.ProteinIdentity {
	acc, ok := wellKnownAccessions[symbol]
	if !ok {
		return nil
	}
	desc := wellKnownDescriptions[symbol]
	return &domain.ProteinIdentity{
		Accession:   acc,
		ProteinName: wellKnownNames[symbol],
		GeneSymbol:  symbol,
		GeneNames:   []string{symbol},
		Organism:    "Homo sapiens",
		Function:    desc,
		Summary:     desc,
		DataSource:  dataSource,
	}
}

// fuzzyMatchKey scans keys for a case-insensitive substring containment match
// against the query, in either direction, and returns the first hit in sorted
// key order. Sorting keeps the (deliberately fuzzy) match deterministic
// run-to-run. Substring containment means symbols that contain each other are
// conflated; that trade-off is accepted for this fallback path.
func fuzzyMatchKey(query string, keys []string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)
	for _, k := range sorted {
		lk := strings.ToLower(k)
		if strings.Contains(lk, q) || strings.Contains(q, lk) {
			return k, true
		}
	}
	return "", false
}

// mapKeys returns the keys of a string-keyed map.
func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

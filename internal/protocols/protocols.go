// Package protocols serves the clinical protocol library. The catalog is a
// static dataset curated by the medical team and shipped with the console;
// it is the flagship feature behind the Pro plan gate.
package protocols

import "strings"

// Protocol is one clinical guideline entry.
type Protocol struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	LastUpdate  string   `json:"lastUpdate"`
	Steps       []string `json:"steps"`
	Source      string   `json:"source"`
	Link        string   `json:"link,omitempty"`
}

// Categories lists the catalog categories in display order, with the
// catch-all first.
func Categories() []string {
	return []string{"Todos", "Emergência", "Cardiologia", "Pneumologia"}
}

// Search filters the catalog by a case-insensitive term over title and
// description, and by category. Empty term or the catch-all category
// match everything.
func Search(term, category string) []Protocol {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Protocol, 0, len(catalog))
	for _, p := range catalog {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if category != "" && category != "Todos" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Get returns the protocol with the given id.
func Get(id string) (Protocol, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Protocol{}, false
}

var catalog = []Protocol{
	{
		ID:          "acls-2025",
		Title:       "ACLS - Suporte Avançado de Vida Cardiovascular",
		Category:    "Emergência",
		Description: "Algoritmo de PCR e Cuidados Pós-PCR conforme AHA 2025.",
		LastUpdate:  "2025/2026",
		Steps: []string{
			"Iniciar RCP de alta qualidade (100-120/min, profundidade 5-6cm).",
			"Monitor/Desfibrilador: Checar ritmo. Ritmo chocável (FV/TV)?",
			"SIM: Choque bifásico 120-200J, RCP 2 min, Epinefrina 1mg IV a cada 3-5 min, Amiodarona 300mg (1ª dose), 150mg (2ª dose).",
			"NÃO (Assistolia/AESP): RCP 2 min, Epinefrina 1mg IV a cada 3-5 min, tratar causas reversíveis (5H e 5T).",
			"Cuidados Pós-RSC: TTM 32-37.5°C se não obedece comandos. SpO2 alvo 92-98%, PAM ≥65mmHg.",
		},
		Source: "AHA Guidelines 2025",
		Link:   "https://cpr.heart.org/en/resuscitation-science/cpr-and-ecc-guidelines",
	},
	{
		ID:          "atls-11",
		Title:       "ATLS 11ª Ed - Suporte Avançado de Vida no Trauma",
		Category:    "Emergência",
		Description: "Avaliação primária e secundária (xABCDE).",
		LastUpdate:  "11ª Ed (2025)",
		Steps: []string{
			"X: Controle imediato de hemorragia externa grave (torniquete, compressão).",
			"A: Via aérea com restrição seletiva de movimento da coluna.",
			"B: Otimizar ventilação. Atenção a pneumotórax e hemotórax.",
			"C: Ressuscitação balanceada (1:1:1). Ácido Tranexâmico na 1ª hora.",
			"D: Glasgow, pupilas. Reversão de anticoagulação se TCE.",
			"E: Prevenir hipotermia agressivamente.",
		},
		Source: "American College of Surgeons (ATLS 11th Ed)",
		Link:   "https://www.facs.org/quality-programs/trauma/education/advanced-trauma-life-support/",
	},
	{
		ID:          "sepsis-2021",
		Title:       "Sepse - Surviving Sepsis Campaign",
		Category:    "Emergência",
		Description: "Bundle de 1 hora atualizado.",
		LastUpdate:  "2021/2025",
		Steps: []string{
			"Medir lactato sérico. Repetir se inicial > 2 mmol/L.",
			"Obter hemoculturas antes de ATB. Iniciar ATB amplo espectro em até 1h.",
			"Ressuscitação: 30 mL/kg cristalóide se hipotensão ou lactato ≥4.",
			"Vasopressores: Noradrenalina precoce. Alvo PAM ≥ 65 mmHg.",
		},
		Source: "Surviving Sepsis Campaign",
		Link:   "https://www.sccm.org/SurvivingSepsisCampaign/Guidelines/Adult-Patients",
	},
	{
		ID:          "anafilaxia",
		Title:       "Anafilaxia",
		Category:    "Emergência",
		Description: "Manejo imediato da reação anafilática.",
		LastUpdate:  "2024",
		Steps: []string{
			"ADRENALINA IM 0.3-0.5mg (adulto) na face anterolateral da coxa.",
			"Decúbito dorsal com MMII elevados; se dispneia, manter sentado.",
			"O2 suplementar alto fluxo.",
			"Acesso venoso calibroso + SF 0.9% em bolus (20mL/kg).",
		},
		Source: "WAO / ASBAI Guidelines",
	},
	{
		ID:          "iam-cst",
		Title:       "IAM com Supradesnivelamento de ST (IAMCST)",
		Category:    "Cardiologia",
		Description: "Manejo agudo do Infarto com supra de ST.",
		LastUpdate:  "2024",
		Steps: []string{
			"ECG em até 10 min da chegada. Supra de ST ou BRE novo: ativar hemodinâmica.",
			"AAS 300mg mastigado + segundo antiagregante.",
			"Angioplastia primária em até 90 min (porta-balão); fibrinólise se indisponível.",
			"Anticoagulação plena e monitorização contínua.",
		},
		Source: "SBC / ESC 2024",
	},
	{
		ID:          "emergencia-hipertensiva",
		Title:       "Emergência Hipertensiva",
		Category:    "Cardiologia",
		Description: "Crise hipertensiva com lesão de órgão-alvo.",
		LastUpdate:  "2024",
		Steps: []string{
			"Confirmar lesão de órgão-alvo antes de tratar como emergência.",
			"Reduzir PAM em até 25% na primeira hora com droga IV titulável.",
			"Exceções: dissecção de aorta e AVC têm alvos próprios.",
		},
		Source: "SBC Diretriz HA 2024",
	},
	{
		ID:          "asma-grave",
		Title:       "Crise de Asma Grave",
		Category:    "Pneumologia",
		Description: "Manejo da exacerbação grave de asma na emergência.",
		LastUpdate:  "2024",
		Steps: []string{
			"Beta-2 agonista de curta inalatório em doses repetidas + ipratrópio.",
			"Corticoide sistêmico precoce (prednisolona 40-50mg ou equivalente IV).",
			"Sulfato de magnésio IV se refratário.",
			"Avaliar VNI/IOT se fadiga ou rebaixamento.",
		},
		Source: "GINA 2024",
	},
	{
		ID:          "tep",
		Title:       "Tromboembolismo Pulmonar (TEP)",
		Category:    "Pneumologia",
		Description: "Diagnóstico e tratamento do TEP agudo.",
		LastUpdate:  "2024",
		Steps: []string{
			"Estratificar probabilidade (Wells) antes de imagem.",
			"Baixa probabilidade: D-dímero; alta: angio-TC direto.",
			"Anticoagulação plena se não houver contraindicação.",
			"Instabilidade hemodinâmica: considerar trombólise.",
		},
		Source: "ESC TEP Guidelines 2024",
	},
}

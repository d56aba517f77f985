// mkfixture generates a deterministic synthetic 837P claim file and its
// paired 835 remittance. The payer mix, denial rates and CPT pools are small
// but shaped like real clearinghouse traffic, so loader and matching tests
// exercise realistic variance.
// Usage: go run ./cmd/mkfixture --claims 25 --out testdata --seed 42
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type payer struct {
	id     string
	name   string
	filing string
}

var payers = []payer{
	{"62308", "BCBS OF TENNESSEE", "BL"},
	{"87726", "UNITED HEALTHCARE", "CI"},
	{"60054", "AETNA", "CI"},
	{"12001", "PALMETTO GBA", "MC"},
	{"61101", "HUMANA", "HM"},
}

type procedure struct {
	cpt    string
	lo, hi int // charge range in whole dollars
}

var visitProcs = []procedure{
	{"99213", 125, 165},
	{"99214", 175, 225},
	{"99215", 250, 325},
}

var addOnProcs = []procedure{
	{"36415", 25, 35},
	{"85025", 35, 55},
	{"80053", 100, 140},
	{"93000", 120, 165},
	{"87880", 35, 55},
}

var diagnosisSets = [][]string{
	{"J069", "R059"},
	{"E119", "E785", "I10"},
	{"M545", "M793"},
	{"F411", "F321"},
	{"N390", "R301"},
	{"I2510", "I10", "E785"},
}

var lastNames = []string{"JOHNSON", "CHEN", "RAMIREZ", "NGUYEN", "PATEL", "BROOKS", "OKAFOR", "WILSON"}
var firstNames = []string{"MARIA", "JAMES", "SOFIA", "DAVID", "GRACE", "CARLOS", "EMILY", "THANH"}

type serviceLine struct {
	cpt    string
	charge int // whole dollars
	units  int
}

type claim struct {
	claimID    string
	svcDate    time.Time
	payer      payer
	patLast    string
	patFirst   string
	lines      []serviceLine
	dx         []string
	authNum    string
	denied     bool
	denialCode string
	partial    bool
}

func (c *claim) totalCharge() int {
	total := 0
	for _, l := range c.lines {
		total += l.charge * l.units
	}
	return total
}

func main() {
	numClaims := flag.Int("claims", 25, "claims to generate")
	outDir := flag.String("out", "testdata", "output directory")
	seed := flag.Int64("seed", 42, "rng seed (fixed seed gives identical files)")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	base := time.Date(2025, 1, 13, 9, 30, 0, 0, time.UTC)

	claims := generateClaims(rng, *numClaims, base)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}

	p837 := filepath.Join(*outDir, "claims_837p.edi")
	if err := os.WriteFile(p837, []byte(build837P(claims, base)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write 837p: %v\n", err)
		os.Exit(1)
	}

	p835 := filepath.Join(*outDir, "remit_835.edi")
	payDate := base.AddDate(0, 0, 14)
	if err := os.WriteFile(p835, []byte(build835(rng, claims, payDate)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write 835: %v\n", err)
		os.Exit(1)
	}

	denied, partial := 0, 0
	for _, c := range claims {
		if c.denied {
			denied++
		}
		if c.partial {
			partial++
		}
	}
	fmt.Printf("wrote %s (%d claims, %d denied, %d partial) and %s\n",
		p837, len(claims), denied, partial, p835)
}

func generateClaims(rng *rand.Rand, n int, base time.Time) []*claim {
	claims := make([]*claim, 0, n)
	for i := 0; i < n; i++ {
		py := payers[rng.Intn(len(payers))]
		last := lastNames[rng.Intn(len(lastNames))]
		first := firstNames[rng.Intn(len(firstNames))]
		svc := base.AddDate(0, 0, rng.Intn(5))

		c := &claim{
			claimID:  fmt.Sprintf("%c%c%s%04d", first[0], last[0], svc.Format("0102"), i+1),
			svcDate:  svc,
			payer:    py,
			patLast:  last,
			patFirst: first,
			dx:       diagnosisSets[rng.Intn(len(diagnosisSets))],
		}

		visit := visitProcs[rng.Intn(len(visitProcs))]
		c.lines = append(c.lines, serviceLine{visit.cpt, visit.lo + rng.Intn(visit.hi-visit.lo), 1})
		for _, addon := range addOnProcs {
			if rng.Float64() < 0.3 {
				c.lines = append(c.lines, serviceLine{addon.cpt, addon.lo + rng.Intn(addon.hi-addon.lo), 1})
			}
		}

		if rng.Float64() < 0.12 {
			c.authNum = fmt.Sprintf("AUTH2025%05d", rng.Intn(90000)+10000)
		}
		switch {
		case rng.Float64() < 0.08:
			c.denied = true
			c.denialCode = []string{"197", "16", "18", "50"}[rng.Intn(4)]
		case rng.Float64() < 0.10:
			c.partial = true
		}

		claims = append(claims, c)
	}
	return claims
}

func build837P(claims []*claim, now time.Time) string {
	var segs []string
	date := now.Format("20060102")
	shortDate := now.Format("060102")
	hhmm := now.Format("1504")

	segs = append(segs,
		"ISA*00*          *00*          *ZZ*CLRGHSE01      *ZZ*1234567890     *"+
			shortDate+"*"+hhmm+"*^*00501*000000001*0*P*:",
		"GS*HC*CLRGHSE01*1234567890*"+date+"*"+hhmm+"*1*X*005010X222A1",
		"ST*837*0001*005010X222A1",
		"BHT*0019*00*B"+date+"001*"+date+"*"+hhmm+"*CH",
		"NM1*41*2*AVAILITY LLC*****46*AV0001",
		"HL*1**20*1",
		"PRV*BI*PXC*207Q00000X",
		"NM1*85*2*NASHVILLE PRIMARY CARE PLLC*****XX*1234567890",
		"REF*EI*621234567",
	)

	hl := 1
	for _, c := range claims {
		hl++
		segs = append(segs,
			fmt.Sprintf("HL*%d*1*22*0", hl),
			"SBR*P*18*GRP123456******"+c.payer.filing,
			fmt.Sprintf("NM1*IL*1*%s*%s****MI*MBR%09d", c.patLast, c.patFirst, hl),
			"NM1*PR*2*"+c.payer.name+"*****PI*"+c.payer.id,
			fmt.Sprintf("CLM*%s*%d***11:B:1*Y*A*Y*Y", c.claimID, c.totalCharge()),
			"DTP*472*D8*"+c.svcDate.Format("20060102"),
		)

		hiParts := make([]string, 0, len(c.dx))
		for j, dx := range c.dx {
			qual := "ABF"
			if j == 0 {
				qual = "ABK"
			}
			hiParts = append(hiParts, qual+":"+dx)
		}
		segs = append(segs, "HI*"+strings.Join(hiParts, "*"))
		segs = append(segs, "REF*D9*CLMREF"+c.claimID)
		if c.authNum != "" {
			segs = append(segs, "REF*G1*"+c.authNum)
		}

		for k, line := range c.lines {
			segs = append(segs,
				fmt.Sprintf("LX*%d", k+1),
				fmt.Sprintf("SV1*HC:%s*%d*UN*%d***1", line.cpt, line.charge*line.units, line.units),
				"DTP*472*D8*"+c.svcDate.Format("20060102"),
			)
		}
	}

	segs = append(segs,
		fmt.Sprintf("SE*%d*0001", len(segs)-1),
		"GE*1*1",
		"IEA*1*000000001",
	)
	return strings.Join(segs, "~") + "~"
}

func build835(rng *rand.Rand, claims []*claim, payDate time.Time) string {
	var segs []string
	date := payDate.Format("20060102")
	shortDate := payDate.Format("060102")

	totalPaid := 0.0
	type remit struct {
		c       *claim
		paid    float64
		patResp float64
		status  string
	}
	remits := make([]remit, 0, len(claims))
	for _, c := range claims {
		total := float64(c.totalCharge())
		r := remit{c: c, status: "1"}
		switch {
		case c.denied:
			r.status = "4"
		case c.partial:
			r.paid = round2(total * (0.45 + rng.Float64()*0.30))
			r.patResp = round2(total * 0.08)
			r.status = "2"
		default:
			allowed := total * (0.78 + rng.Float64()*0.14)
			r.patResp = round2(allowed * 0.10)
			r.paid = round2(allowed - r.patResp)
		}
		totalPaid += r.paid
		remits = append(remits, r)
	}

	segs = append(segs,
		"ISA*00*          *00*          *ZZ*62308          *ZZ*1234567890     *"+
			shortDate+"*0900*^*00501*000000002*0*P*:",
		"GS*HP*62308*1234567890*"+date+"*0900*2*X*005010X221A1",
		"ST*835*0002*005010X221A1",
		fmt.Sprintf("BPR*I*%.2f*C*ACH*CCP*01*111000025*DA*9876543210*1234567890**01*111000025*DA*1234567890*%s", totalPaid, date),
		"TRN*1*EFT"+date+"002*1234567890",
		"DTM*405*"+date,
		"N1*PR*BCBS OF TENNESSEE*PI*62308",
		"N1*PE*NASHVILLE PRIMARY CARE PLLC*XX*1234567890",
	)

	for i, r := range remits {
		c := r.c
		total := float64(c.totalCharge())
		ctrl := fmt.Sprintf("623089%07d", 1000000+i)
		segs = append(segs,
			fmt.Sprintf("CLP*%s*%s*%.0f*%.2f*%.2f*%s*%s", c.claimID, r.status, total, r.paid, r.patResp, c.payer.filing, ctrl),
			fmt.Sprintf("NM1*QC*1*%s*%s", c.patLast, c.patFirst),
			"DTM*232*"+c.svcDate.Format("20060102"),
			"DTM*573*"+date,
		)

		switch {
		case c.denied:
			segs = append(segs, fmt.Sprintf("CAS*CO*%s*%.2f", c.denialCode, total))
		default:
			writeoff := round2(total - r.paid - r.patResp)
			if writeoff > 0 {
				segs = append(segs, fmt.Sprintf("CAS*CO*45*%.2f", writeoff))
			}
			if r.patResp > 0 {
				copay := round2(r.patResp * 0.6)
				coins := round2(r.patResp - copay)
				segs = append(segs, fmt.Sprintf("CAS*PR*1*%.2f*1*2*%.2f*1", copay, coins))
			}
		}

		for _, line := range c.lines {
			charged := float64(line.charge * line.units)
			linePaid := 0.0
			if !c.denied && total > 0 {
				linePaid = round2(charged * (r.paid / total))
			}
			segs = append(segs,
				fmt.Sprintf("SVC*HC:%s*%.0f*%.2f**%d", line.cpt, charged, linePaid, line.units),
				"DTM*472*"+c.svcDate.Format("20060102"),
			)
			if adj := round2(charged - linePaid); adj > 0 && !c.denied {
				segs = append(segs, fmt.Sprintf("CAS*CO*45*%.2f", adj))
			}
		}
	}

	segs = append(segs,
		fmt.Sprintf("SE*%d*0002", len(segs)-1),
		"GE*1*2",
		"IEA*1*000000002",
	)
	return strings.Join(segs, "~") + "~"
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

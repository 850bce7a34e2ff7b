// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package targeting

import (
	"context"
	"testing"
	"time"
)

type fixtureAccount struct {
	id, name, region, manager string
}

var fixtureAccounts = []fixtureAccount{
	{"C001", "서울내과의원", "서울", "김영업"},
	{"C002", "밝은안과의원", "서울", "김영업"},
	{"C003", "튼튼정형외과의원", "경기", "이영업"},
	{"C004", "맑은이비인후과", "경기", "이영업"},
	{"C005", "고운피부과의원", "부산", "박영업"},
	{"C006", "행복가정의학과의원", "부산", "박영업"},
	{"C007", "바른비뇨기과의원", "서울", "김영업"},
	{"C008", "중앙병원", "대구", "최영업"},
	{"C009", "온누리약국", "대구", "최영업"},
	{"C010", "아이소아청소년과의원", "경기", "이영업"},
	{"C011", "연세클리닉", "서울", "김영업"},
	{"C012", "한빛내과", "부산", "박영업"},
}

type fixtureProduct struct {
	group, name string
}

var fixtureProducts = []fixtureProduct{
	{"아모잘탄", "아모잘탄정5/50mg"},
	{"로수젯", "로수젯정10/5mg"},
	{"에소메졸", "에소메졸캡슐20mg"},
	{"히알루미니", "히알루미니점안액"},
	{"팔팔", "팔팔정50mg"},
	{"레보투스", "레보투스정"},
}

// fixtureTransactions builds six months of deterministic sales. Account i
// skips product j when (i+j)%3 == 0, and every fourth account stops
// buying after the third month.
func fixtureTransactions() []Transaction {
	var txns []Transaction
	for i, a := range fixtureAccounts {
		for j, p := range fixtureProducts {
			if (i+j)%3 == 0 {
				continue
			}
			for m := 1; m <= 6; m++ {
				if i%4 == 3 && m > 3 {
					continue
				}
				revenue := float64((i+1)*(j+1)) * 100_000 * float64(m+i%3)
				txns = append(txns, Transaction{
					AccountID:    a.id,
					AccountName:  a.name,
					Region:       a.region,
					Manager:      a.manager,
					ProductGroup: p.group,
					ProductName:  p.name,
					Period:       NewPeriod(2024, time.Month(m)),
					Revenue:      revenue,
					Quantity:     float64(10 * (j + 1)),
				})
			}
		}
	}
	return txns
}

// testConfig is DefaultConfig with small ensembles for fast tests.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Forest.Trees = 10
	cfg.Forest.Tree.MaxDepth = 6
	cfg.Boosting.Rounds = 20
	cfg.Workers = 4
	return cfg
}

func prepareFixture(t *testing.T) *State {
	t.Helper()
	s, err := Prepare(context.Background(), testConfig(), fixtureTransactions())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return s
}

func trainedFixture(t *testing.T) *State {
	t.Helper()
	s, err := prepareFixture(t).WithModels(context.Background())
	if err != nil {
		t.Fatalf("WithModels() error = %v", err)
	}
	return s
}

func tx(account, group, name string, period Period, revenue float64) Transaction {
	return Transaction{
		AccountID:    account,
		AccountName:  account,
		ProductGroup: group,
		ProductName:  name,
		Period:       period,
		Revenue:      revenue,
		Quantity:     1,
	}
}

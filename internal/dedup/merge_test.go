package dedup

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestDecisionValidate(t *testing.T) {
	valid := Decision{FieldName: SideA, FieldDuration: SideB}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid decision rejected: %v", err)
	}

	if err := (Decision{"elevation": SideA}).Validate(); err == nil {
		t.Error("unknown field should be rejected")
	}
	if err := (Decision{FieldName: "C"}).Validate(); err == nil {
		t.Error("invalid side should be rejected")
	}
}

func TestApplyDecision(t *testing.T) {
	survivor := []byte(`{
		"activityId": 1,
		"activityName": "Run A",
		"duration": 1800,
		"calories": 300,
		"activityType": {"typeId": 1, "typeKey": "running", "parentTypeId": 17}
	}`)
	loser := []byte(`{
		"activityId": 2,
		"activityName": "Run B",
		"duration": 1750,
		"calories": 320,
		"activityType": {"typeId": 6, "typeKey": "trail_running"}
	}`)

	decision := Decision{
		FieldName:     SideB,
		FieldCalories: SideA,
		FieldType:     SideB,
	}

	merged, err := ApplyDecision(survivor, loser, decision, SideA)
	if err != nil {
		t.Fatalf("ApplyDecision: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(merged, &doc); err != nil {
		t.Fatalf("merged document is not valid JSON: %v", err)
	}

	if doc["activityName"] != "Run B" {
		t.Errorf("activityName = %v, want loser's value", doc["activityName"])
	}
	if doc["calories"] != float64(300) {
		t.Errorf("calories = %v, want survivor's value kept", doc["calories"])
	}
	if doc["duration"] != float64(1800) {
		t.Errorf("duration = %v, undecided field must stay untouched", doc["duration"])
	}
	// Survivor identity is never part of the merge.
	if doc["activityId"] != float64(1) {
		t.Errorf("activityId = %v, want survivor's id", doc["activityId"])
	}

	// Nested type is shallow-overlaid: loser keys win, survivor-only keys
	// survive.
	at := doc["activityType"].(map[string]any)
	if at["typeKey"] != "trail_running" {
		t.Errorf("typeKey = %v, want loser's value", at["typeKey"])
	}
	if at["parentTypeId"] != float64(17) {
		t.Errorf("parentTypeId = %v, survivor-only nested key must survive", at["parentTypeId"])
	}
}

func TestApplyDecision_Idempotent(t *testing.T) {
	survivor := []byte(`{"activityName":"A","duration":100,"activityType":{"typeKey":"running"}}`)
	loser := []byte(`{"activityName":"B","duration":90,"activityType":{"typeKey":"cycling","typeId":2}}`)

	decision := Decision{FieldName: SideB, FieldType: SideB, FieldDuration: SideA}

	once, err := ApplyDecision(survivor, loser, decision, SideA)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := ApplyDecision(once, loser, decision, SideA)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(once, twice) {
		t.Errorf("applying the decision twice changed the document:\nonce:  %s\ntwice: %s", once, twice)
	}
}

func TestApplyDecision_MissingLoserKey(t *testing.T) {
	survivor := []byte(`{"activityName":"A","averageHR":150}`)
	loser := []byte(`{"activityName":"B"}`)

	merged, err := ApplyDecision(survivor, loser, Decision{FieldHeartRate: SideB}, SideA)
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := json.Unmarshal(merged, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["averageHR"] != float64(150) {
		t.Errorf("averageHR = %v, survivor value should be kept when loser has none", doc["averageHR"])
	}
}

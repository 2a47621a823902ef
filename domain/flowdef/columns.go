package flowdef

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StageList, TransitionList and AutoRuleList are stored as JSON text
// columns on the workflow config row: validated on write, trusted on read.

type StageList []Stage

type TransitionList []Transition

type AutoRuleList []AutoRule

func (t StageList) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *StageList) Scan(v interface{}) error {
	return scanJSONColumn(v, c)
}

func (t TransitionList) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *TransitionList) Scan(v interface{}) error {
	return scanJSONColumn(v, c)
}

func (t AutoRuleList) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *AutoRuleList) Scan(v interface{}) error {
	return scanJSONColumn(v, c)
}

func scanJSONColumn(v interface{}, target interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), target)
}

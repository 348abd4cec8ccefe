package types

import "strconv"

// ColumnType is the driver's SQL data type tag for a column.
//
// Values are numerically identical to the SQL_* type codes in sql.h and
// sqlext.h, so a raw tag converts directly.
type ColumnType int16

const (
	ColumnUnknown      ColumnType = 0
	ColumnChar         ColumnType = 1
	ColumnNumeric      ColumnType = 2
	ColumnDecimal      ColumnType = 3
	ColumnInteger      ColumnType = 4
	ColumnSmallInt     ColumnType = 5
	ColumnFloat        ColumnType = 6
	ColumnReal         ColumnType = 7
	ColumnDouble       ColumnType = 8
	ColumnVarChar      ColumnType = 12
	ColumnDate         ColumnType = 91
	ColumnTime         ColumnType = 92
	ColumnTimestamp    ColumnType = 93
	ColumnLongVarChar  ColumnType = -1
	ColumnBinary       ColumnType = -2
	ColumnVarBinary    ColumnType = -3
	ColumnLongVarBin   ColumnType = -4
	ColumnBigInt       ColumnType = -5
	ColumnTinyInt      ColumnType = -6
	ColumnBit          ColumnType = -7
	ColumnWChar        ColumnType = -8
	ColumnWVarChar     ColumnType = -9
	ColumnWLongVarChar ColumnType = -10
	ColumnGUID         ColumnType = -11

	ColumnIntervalYear           ColumnType = 101
	ColumnIntervalMonth          ColumnType = 102
	ColumnIntervalDay            ColumnType = 103
	ColumnIntervalHour           ColumnType = 104
	ColumnIntervalMinute         ColumnType = 105
	ColumnIntervalSecond         ColumnType = 106
	ColumnIntervalYearToMonth    ColumnType = 107
	ColumnIntervalDayToHour      ColumnType = 108
	ColumnIntervalDayToMinute    ColumnType = 109
	ColumnIntervalDayToSecond    ColumnType = 110
	ColumnIntervalHourToMinute   ColumnType = 111
	ColumnIntervalHourToSecond   ColumnType = 112
	ColumnIntervalMinuteToSecond ColumnType = 113
)

var columnTypeNames = map[ColumnType]string{
	ColumnUnknown:                "UNKNOWN",
	ColumnChar:                   "CHAR",
	ColumnNumeric:                "NUMERIC",
	ColumnDecimal:                "DECIMAL",
	ColumnInteger:                "INTEGER",
	ColumnSmallInt:               "SMALLINT",
	ColumnFloat:                  "FLOAT",
	ColumnReal:                   "REAL",
	ColumnDouble:                 "DOUBLE",
	ColumnVarChar:                "VARCHAR",
	ColumnDate:                   "DATE",
	ColumnTime:                   "TIME",
	ColumnTimestamp:              "TIMESTAMP",
	ColumnLongVarChar:            "LONGVARCHAR",
	ColumnBinary:                 "BINARY",
	ColumnVarBinary:              "VARBINARY",
	ColumnLongVarBin:             "LONGVARBINARY",
	ColumnBigInt:                 "BIGINT",
	ColumnTinyInt:                "TINYINT",
	ColumnBit:                    "BIT",
	ColumnWChar:                  "WCHAR",
	ColumnWVarChar:               "WVARCHAR",
	ColumnWLongVarChar:           "WLONGVARCHAR",
	ColumnGUID:                   "GUID",
	ColumnIntervalYear:           "INTERVAL YEAR",
	ColumnIntervalMonth:          "INTERVAL MONTH",
	ColumnIntervalDay:            "INTERVAL DAY",
	ColumnIntervalHour:           "INTERVAL HOUR",
	ColumnIntervalMinute:         "INTERVAL MINUTE",
	ColumnIntervalSecond:         "INTERVAL SECOND",
	ColumnIntervalYearToMonth:    "INTERVAL YEAR TO MONTH",
	ColumnIntervalDayToHour:      "INTERVAL DAY TO HOUR",
	ColumnIntervalDayToMinute:    "INTERVAL DAY TO MINUTE",
	ColumnIntervalDayToSecond:    "INTERVAL DAY TO SECOND",
	ColumnIntervalHourToMinute:   "INTERVAL HOUR TO MINUTE",
	ColumnIntervalHourToSecond:   "INTERVAL HOUR TO SECOND",
	ColumnIntervalMinuteToSecond: "INTERVAL MINUTE TO SECOND",
}

// String returns the SQL name of the type.
func (t ColumnType) String() string {
	if name, ok := columnTypeNames[t]; ok {
		return name
	}

	return "SQLTYPE(" + strconv.Itoa(int(t)) + ")"
}

// Known reports whether the tag is one of the enumerated types.
// Unrecognized tags are preserved as-is rather than collapsed to ColumnUnknown.
func (t ColumnType) Known() bool {
	_, ok := columnTypeNames[t]
	return ok && t != ColumnUnknown
}

// IsWide reports whether the column holds UTF-16 character data.
func (t ColumnType) IsWide() bool {
	return t == ColumnWChar || t == ColumnWVarChar || t == ColumnWLongVarChar
}

// IsBinary reports whether the column holds raw bytes.
func (t ColumnType) IsBinary() bool {
	return t == ColumnBinary || t == ColumnVarBinary || t == ColumnLongVarBin
}

package api

// Return codes.
const (
	SQL_SUCCESS              Return = 0
	SQL_SUCCESS_WITH_INFO    Return = 1
	SQL_STILL_EXECUTING      Return = 2
	SQL_ERROR                Return = -1
	SQL_INVALID_HANDLE       Return = -2
	SQL_NEED_DATA            Return = 99
	SQL_NO_DATA              Return = 100
	SQL_PARAM_DATA_AVAILABLE Return = 101
)

// Handle types.
const (
	SQL_HANDLE_ENV  HandleType = 1
	SQL_HANDLE_DBC  HandleType = 2
	SQL_HANDLE_STMT HandleType = 3
	SQL_HANDLE_DESC HandleType = 4
)

// SQL_NULL_HANDLE is the null handle.
const SQL_NULL_HANDLE Handle = 0

// Length indicator sentinels.
const (
	SQL_NULL_DATA               int64 = -1
	SQL_DATA_AT_EXEC            int64 = -2
	SQL_NTS                     int64 = -3
	SQL_NO_TOTAL                int64 = -4
	SQL_LEN_DATA_AT_EXEC_OFFSET int64 = -100
)

// Parameter direction.
const (
	SQL_PARAM_INPUT        int16 = 1
	SQL_PARAM_INPUT_OUTPUT int16 = 2
	SQL_PARAM_OUTPUT       int16 = 4
)

// C data type tags.
const (
	SQL_C_CHAR      CType = 1
	SQL_C_LONG      CType = 4
	SQL_C_SHORT     CType = 5
	SQL_C_FLOAT     CType = 7
	SQL_C_DOUBLE    CType = 8
	SQL_C_DEFAULT   CType = 99
	SQL_C_BINARY    CType = -2
	SQL_C_BIT       CType = -7
	SQL_C_WCHAR     CType = -8
	SQL_C_GUID      CType = -11
	SQL_C_SSHORT    CType = -15
	SQL_C_SLONG     CType = -16
	SQL_C_USHORT    CType = -17
	SQL_C_ULONG     CType = -18
	SQL_C_SBIGINT   CType = -25
	SQL_C_STINYINT  CType = -26
	SQL_C_UBIGINT   CType = -27
	SQL_C_UTINYINT  CType = -28
	SQL_C_TYPE_DATE CType = 91
	SQL_C_TYPE_TIME CType = 92
)

// SQL data type tags.
const (
	SQL_UNKNOWN_TYPE   SQLType = 0
	SQL_CHAR           SQLType = 1
	SQL_NUMERIC        SQLType = 2
	SQL_DECIMAL        SQLType = 3
	SQL_INTEGER        SQLType = 4
	SQL_SMALLINT       SQLType = 5
	SQL_FLOAT          SQLType = 6
	SQL_REAL           SQLType = 7
	SQL_DOUBLE         SQLType = 8
	SQL_VARCHAR        SQLType = 12
	SQL_TYPE_DATE      SQLType = 91
	SQL_TYPE_TIME      SQLType = 92
	SQL_TYPE_TIMESTAMP SQLType = 93
	SQL_LONGVARCHAR    SQLType = -1
	SQL_BINARY         SQLType = -2
	SQL_VARBINARY      SQLType = -3
	SQL_LONGVARBINARY  SQLType = -4
	SQL_BIGINT         SQLType = -5
	SQL_TINYINT        SQLType = -6
	SQL_BIT            SQLType = -7
	SQL_WCHAR          SQLType = -8
	SQL_WVARCHAR       SQLType = -9
	SQL_WLONGVARCHAR   SQLType = -10
	SQL_GUID           SQLType = -11
)

// Nullability reported by DescribeCol.
const (
	SQL_NO_NULLS         int16 = 0
	SQL_NULLABLE         int16 = 1
	SQL_NULLABLE_UNKNOWN int16 = 2
)

// FreeStmt options.
const (
	SQL_CLOSE        uint16 = 0
	SQL_DROP         uint16 = 1
	SQL_UNBIND       uint16 = 2
	SQL_RESET_PARAMS uint16 = 3
)

// EndTran completion types.
const (
	SQL_COMMIT   int16 = 0
	SQL_ROLLBACK int16 = 1
)

// DataSources directions.
const (
	SQL_FETCH_NEXT  uint16 = 1
	SQL_FETCH_FIRST uint16 = 2
)

// Environment attributes and values.
const (
	SQL_ATTR_ODBC_VERSION       int32 = 200
	SQL_ATTR_CONNECTION_POOLING int32 = 201

	SQL_OV_ODBC3    uintptr = 3
	SQL_OV_ODBC3_80 uintptr = 380

	SQL_CP_OFF            uintptr = 0
	SQL_CP_ONE_PER_DRIVER uintptr = 1
	SQL_CP_ONE_PER_HENV   uintptr = 2
)

// Connection attributes and values.
const (
	SQL_ATTR_AUTOCOMMIT      int32 = 102
	SQL_ATTR_CONNECTION_DEAD int32 = 1209

	SQL_AUTOCOMMIT_OFF uintptr = 0
	SQL_AUTOCOMMIT_ON  uintptr = 1

	SQL_CD_FALSE uintptr = 0
	SQL_CD_TRUE  uintptr = 1
)

// GetInfo information types.
const (
	SQL_DATA_SOURCE_NAME uint16 = 2
	SQL_DRIVER_NAME      uint16 = 6
	SQL_DRIVER_VER       uint16 = 7
	SQL_DBMS_NAME        uint16 = 17
	SQL_DBMS_VER         uint16 = 18
)
